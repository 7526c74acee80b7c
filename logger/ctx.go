// ctx.go provides helpers to carry a logger inside a context.

package logger

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
)

func FromCtx(ctx context.Context) logger.Logger {
	return logger.FromCtx(ctx)
}

func CtxWithLogger(ctx context.Context, l logger.Logger) context.Context {
	return logger.CtxWithLogger(ctx, l)
}

// CtxWithField returns a context whose logger additionally reports
// the given structured field; used to tag log lines of a hardware unit
// or a processing context.
func CtxWithField(ctx context.Context, key string, value any) context.Context {
	return logger.CtxWithLogger(ctx, logger.FromCtx(ctx).WithField(key, value))
}
