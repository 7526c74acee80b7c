// assert.go provides the invariant check shared by camif packages.

package internal

import (
	"context"

	"github.com/xaionaro-go/camif/logger"
)

// Assert panics (through the context logger) when an internal
// invariant does not hold.
func Assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}

	logger.Panic(ctx, append([]any{"assertion failed"}, extraArgs...)...)
}
