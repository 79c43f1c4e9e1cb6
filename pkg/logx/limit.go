package logx

import (
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// limitedWriter caps the rate of Trace/Debug/Info lines. Warn and above
// always pass: a tick loop that logs per frame must never be able to
// drown a warning.
type limitedWriter struct {
	next zerolog.LevelWriter
	lim  *rate.Limiter
}

func newLimitedWriter(next zerolog.LevelWriter, perSec int) *limitedWriter {
	return &limitedWriter{
		next: next,
		lim:  rate.NewLimiter(rate.Limit(perSec), perSec),
	}
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *limitedWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel && !w.lim.Allow() {
		// Dropped. Report success so zerolog does not surface an error.
		return len(p), nil
	}
	return w.next.WriteLevel(level, p)
}
