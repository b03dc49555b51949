package logx

import (
	"fmt"

	"github.com/rs/zerolog"

	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/logx/internal"
)

// zeroLogger adapts a zerolog.Logger to core/log.Logger so hosts that already
// log through zerolog can hand their logger to settingsx unchanged.
type zeroLogger struct {
	zl zerolog.Logger
}

// FromZerolog wraps zl as a core/log.Logger.
func FromZerolog(zl zerolog.Logger) log.Logger {
	return &zeroLogger{zl: zl}
}

func (z *zeroLogger) With(kv ...any) log.Logger {
	ctx := z.zl.With()
	for _, attr := range internal.KVToAttrs(kv) {
		ctx = ctx.Interface(attr.Key, attr.Value.Any())
	}
	return &zeroLogger{zl: ctx.Logger()}
}

func (z *zeroLogger) Debug(msg string, kv ...any) { z.emit(z.zl.Debug(), msg, kv) }
func (z *zeroLogger) Info(msg string, kv ...any)  { z.emit(z.zl.Info(), msg, kv) }
func (z *zeroLogger) Warn(msg string, kv ...any)  { z.emit(z.zl.Warn(), msg, kv) }

func (z *zeroLogger) Error(err error, msg string, kv ...any) {
	z.emit(z.zl.Error().Err(err), msg, kv)
}

func (z *zeroLogger) emit(ev *zerolog.Event, msg string, kv []any) {
	if ev == nil {
		return
	}
	for _, attr := range internal.KVToAttrs(kv) {
		switch v := attr.Value.Any().(type) {
		case string:
			ev = ev.Str(attr.Key, v)
		case int:
			ev = ev.Int(attr.Key, v)
		case int64:
			ev = ev.Int64(attr.Key, v)
		case bool:
			ev = ev.Bool(attr.Key, v)
		case error:
			ev = ev.AnErr(attr.Key, v)
		case fmt.Stringer:
			ev = ev.Stringer(attr.Key, v)
		default:
			ev = ev.Interface(attr.Key, v)
		}
	}
	ev.Msg(msg)
}
