// Package extract pulls typed values out of noisy invoice page text.
//
// Field values are located with vendor pattern tables: a table maps a field
// name to a regular expression whose first capture group is the value. When a
// key is not in the table it is used as the expression itself, so callers can
// mix table lookups with ad-hoc patterns.
//
// All matching is case-insensitive. Nothing in this package returns an error
// for a missing match; absence is reported with a boolean or an empty slice.
package extract

import (
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"invoicefiler/internal/logger"
)

// Patterns maps a field name to the regular expression that captures it.
type Patterns map[string]string

// Resolve returns the expression for key, or key itself when the table has no entry.
func (p Patterns) Resolve(key string) string {
	if p != nil {
		if expr, ok := p[key]; ok {
			return expr
		}
	}
	return key
}

var cache sync.Map // pattern string -> *regexp.Regexp

// Compile returns the case-insensitive form of pattern, cached per pattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := cache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	cache.Store(pattern, re)
	return re, nil
}

func componentLog() zerolog.Logger {
	return logger.WithComponent("extract")
}

// compileOrLog compiles pattern and logs instead of failing on a bad expression.
func compileOrLog(op, pattern string) *regexp.Regexp {
	re, err := Compile(pattern)
	if err != nil {
		log := componentLog()
		log.Warn().
			Err(err).
			Str("op", op).
			Str("pattern", pattern).
			Msg("Invalid pattern, treating as no match")
		return nil
	}
	return re
}

// Field extracts the first capture group of the pattern named by key.
func Field(text, key string, patterns Patterns) (string, bool) {
	re := compileOrLog("Field", patterns.Resolve(key))
	if re == nil {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if len(m) < 2 {
		log := componentLog()
		log.Warn().
			Str("key", key).
			Msg("Pattern has no capture group")
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Matches reports whether pattern matches anywhere in text.
func Matches(text, pattern string) bool {
	re := compileOrLog("Matches", pattern)
	return re != nil && re.MatchString(text)
}
