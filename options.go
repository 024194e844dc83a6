package idscodec

import "go.uber.org/zap"

type options struct {
	logger   *zap.Logger
	sizeHint int
}

// Option configures an Encoder or Decoder.
type Option func(*options)

// WithLogger routes session diagnostics to logger. Sessions only log at
// debug level and only on rare events, never per field.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSizeHint preallocates the encoder's buffer.
func WithSizeHint(n int) Option {
	return func(o *options) { o.sizeHint = n }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), sizeHint: growChunk}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
