// level.go re-exports the log levels used by camif.

package logger

import (
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
)

type Level = logger.Level

const (
	LevelFatal   = logger.LevelFatal
	LevelPanic   = logger.LevelPanic
	LevelError   = logger.LevelError
	LevelWarning = logger.LevelWarning
	LevelInfo    = logger.LevelInfo
	LevelDebug   = logger.LevelDebug
	LevelTrace   = logger.LevelTrace
)

// ParseLevel converts a textual level ("info", "debug", ...) into a Level.
func ParseLevel(s string) (Level, error) {
	var l Level
	if err := l.Set(s); err != nil {
		return logger.LevelUndefined, fmt.Errorf("unable to parse log level '%s': %w", s, err)
	}
	return l, nil
}
