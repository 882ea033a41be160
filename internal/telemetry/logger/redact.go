package logger

import (
	"log/slog"
	"strings"
)

// CodeKey is the attribute key under which discount codes are logged.
const CodeKey = "code"

// Sensitive key patterns that are always fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive masks discount codes and redacts secrets.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if a.Key == CodeKey && !showCodes.Load() {
			return slog.String(a.Key, MaskCode(strVal))
		}
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// MaskCode keeps the first two and the last character of a code.
// Values of three characters or fewer are fully masked.
func MaskCode(code string) string {
	if code == "" {
		return ""
	}
	if len(code) <= 3 {
		return strings.Repeat("*", len(code))
	}
	return code[:2] + strings.Repeat("*", len(code)-3) + code[len(code)-1:]
}

// IsSensitiveKey checks if a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
