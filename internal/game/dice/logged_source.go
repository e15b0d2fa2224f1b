package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level with the
// requested bound and the value produced.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result.
//
// Precondition: n > 0.
// Postcondition: result logged; returns a value in [0, n).
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random draw",
		zap.Int("bound", n),
		zap.Int("value", v),
	)
	return v
}
