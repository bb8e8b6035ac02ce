package httpx

import "log/slog"

type Option func(*LoggingRoundTripper)

func WithLogFieldMaxLen(logFieldMaxLen int) Option {
	return func(rt *LoggingRoundTripper) {
		rt.logFieldMaxLen = logFieldMaxLen
	}
}

func WithSensitiveDataMasker(sensitiveDataMasker sensitiveDataMasker) Option {
	return func(rt *LoggingRoundTripper) {
		rt.sensitiveDataMasker = sensitiveDataMasker
	}
}

// WithAttrs adds fixed attributes to every request/response record, e.g. the
// egress route a transport belongs to.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(rt *LoggingRoundTripper) {
		rt.attrs = append(rt.attrs, attrs...)
	}
}
