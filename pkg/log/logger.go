package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// NewContextWithLogger installs the process logger and returns a context carrying it
// together with a flush function for the underlying diode writer.
func NewContextWithLogger(ctx context.Context, debug bool) (context.Context, func()) {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return ""
	}

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Non-blocking ring buffer so a slow terminal never stalls a chat turn
	wr := diode.NewWriter(os.Stdout, 1000, 5*time.Millisecond, func(missed int) {
		fmt.Printf("Logger Dropped %d messages\n", missed)
	})

	logger := newLogger(wr)
	log.Logger = logger

	return log.With().Logger().WithContext(ctx), func() {
		wr.Close()
	}
}

// NewContextWithWriter is used by tests and the local REPL to send logs elsewhere.
func NewContextWithWriter(ctx context.Context, w io.Writer) context.Context {
	logger := newLogger(w)
	return logger.WithContext(ctx)
}

func newLogger(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
	}

	return zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(2).
		Logger()
}

func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}

// WithIdentity returns a context whose logger tags every entry with the participant.
func WithIdentity(ctx context.Context, identity int64) context.Context {
	return FromCtx(ctx).With().Int64("identity", identity).Logger().WithContext(ctx)
}

// WithTurn tags every entry with a fresh id for one conversation turn.
func WithTurn(ctx context.Context) context.Context {
	return FromCtx(ctx).With().Str("turn", uuid.NewString()).Logger().WithContext(ctx)
}
