package logging

import (
	"strings"

	"github.com/ketzal-web/ketzal/kv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel recognizes debug, info, warn (warning) and error, case-insensitive. Anything
// else is info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger writing JSON to stderr, or human-readable colored lines if
// development is set.
func New(level string, development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	return cfg.Build()
}

var sensitive = []string{"authorization", "cookie", "proxy-authorization", "x-api-key"}

// SafeHeaders renders headers in a compact form suitable for logging, with values of the
// sensitive ones redacted.
func SafeHeaders(headers *kv.Storage) string {
	var b strings.Builder

	for key, value := range headers.Pairs() {
		if b.Len() > 0 {
			b.WriteString("; ")
		}

		b.WriteString(key)
		b.WriteByte('=')

		if isSensitive(key) {
			b.WriteString("<redacted>")
		} else {
			b.WriteString(value)
		}
	}

	return b.String()
}

func isSensitive(key string) bool {
	for _, s := range sensitive {
		if strings.EqualFold(s, key) {
			return true
		}
	}

	return false
}
