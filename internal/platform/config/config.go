// Package config reads service configuration from prefix scoped environment variables
//
// Must* accessors panic through the logger when a value is missing or malformed,
// which is only ever done at process start. May* accessors fall back to a default
// and log a warning on malformed input
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"orgcore/internal/platform/logger"

	"github.com/joho/godotenv"
)

// Conf is a namespaced view over environment variables
type Conf struct{ prefix string }

// New returns an unprefixed view
func New() Conf { return Conf{} }

// Prefix returns a child view, e.g. cfg.Prefix("SERVICE_PGSQL_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// LoadDotenv loads the first existing file of paths into the environment
// Variables already set win; missing files are skipped
func LoadDotenv(paths ...string) string {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.Get().Warn().Err(err).Str("path", p).Msg("dotenv load failed")
			continue
		}
		return p
	}
	return ""
}

// parse converts a raw value; ok=false on malformed input
func parse[T any](s string, conv func(string) (T, error)) (T, bool) {
	v, err := conv(s)
	return v, err == nil
}

func (c Conf) must(k string) string {
	v := c.lookup(k)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
	}
	return v
}

func (c Conf) invalid(k, s, want string) {
	logger.Get().Panic().Str("key", c.key(k)).Str("value", s).Msg("invalid " + want)
}

// MustString returns a required value
func (c Conf) MustString(k string) string { return c.must(k) }

// MustInt returns a required integer
func (c Conf) MustInt(k string) int {
	s := c.must(k)
	v, ok := parse(s, strconv.Atoi)
	if !ok {
		c.invalid(k, s, "int")
	}
	return v
}

// MustDuration returns a required Go duration (250ms, 2s, 1h)
func (c Conf) MustDuration(k string) time.Duration {
	s := c.must(k)
	v, ok := parse(s, time.ParseDuration)
	if !ok {
		c.invalid(k, s, "duration")
	}
	return v
}

// MustPort returns a listen address like ":4000"
func (c Conf) MustPort(k string) string {
	s := c.must(k)
	p, ok := parse(s, strconv.Atoi)
	if !ok || p < 1 || p > 65535 {
		c.invalid(k, s, "port")
	}
	return ":" + s
}

// Require panics unless every key is set
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		_ = c.must(k)
	}
}

// MayString returns the value or def
func (c Conf) MayString(k, def string) string {
	if v := c.lookup(k); v != "" {
		return v
	}
	return def
}

func mayParse[T any](c Conf, k string, def T, conv func(string) (T, error)) T {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	if v, ok := parse(s, conv); ok {
		return v
	}
	logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Msg("invalid value; using default")
	return def
}

// MayInt returns the integer value or def
func (c Conf) MayInt(k string, def int) int { return mayParse(c, k, def, strconv.Atoi) }

// MayBool returns the bool value or def
func (c Conf) MayBool(k string, def bool) bool { return mayParse(c, k, def, strconv.ParseBool) }

// MayDuration returns the duration value or def
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return mayParse(c, k, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks; def when nothing remains
func (c Conf) MayCSV(k string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value lowercased if it is one of allowed, def when unset
// An unknown value panics: a typo in a mode switch must not silently pick the default
func (c Conf) MayEnum(k, def string, allowed ...string) string {
	v := c.lookup(k)
	if v == "" {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
