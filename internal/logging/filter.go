// Package logging builds the hive logger: console and rotating-file
// output with sensitive data redaction, so API keys never reach disk.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue replaces sensitive data in log output.
const RedactedValue = "[REDACTED]"

// sensitivePatterns match credential formats that could leak through
// log messages: Anthropic API keys, bearer tokens, and generic
// key=value secrets.
//
//nolint:gochecknoglobals // Package-level patterns for reuse
var sensitivePatterns = []*regexp.Regexp{
	// Anthropic API keys (sk-ant-api...)
	regexp.MustCompile(`sk-ant-api[a-zA-Z0-9_-]+`),

	// Generic sk- keys
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),

	// key=value secrets
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password|token|credential)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
}

// sensitiveFieldNames always have their values redacted, matched
// case-insensitively.
//
//nolint:gochecknoglobals // Package-level list for reuse
var sensitiveFieldNames = []string{
	"api_key",
	"apikey",
	"anthropic_api_key",
	"secret",
	"password",
	"credential",
	"token",
	"authorization",
	"bearer",
}

// FilterSensitiveValue redacts any sensitive patterns in the value.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName reports whether a field name indicates a
// sensitive value.
func IsSensitiveFieldName(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns the value suitable for logging under the given
// field name: redacted entirely for sensitive field names, pattern
// filtered otherwise.
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// ContainsSensitiveData reports whether the string matches any
// sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// SensitiveDataHook flags log events whose message matches a sensitive
// pattern. Zerolog hooks cannot rewrite the message itself, so actual
// redaction happens in FilteringWriter and SafeValue at call sites;
// the hook marks entries that slipped through unfiltered.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// FilteringWriter wraps an io.Writer and redacts sensitive patterns
// before writing. Log file writers are wrapped in one so secrets never
// land on disk even when a call site forgets to filter.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports the original length so
// callers do not see a short write when redaction shrinks the payload.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
