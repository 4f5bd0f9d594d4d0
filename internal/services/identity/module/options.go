package module

import (
	"time"

	"orgcore/internal/platform/config"
)

// Config holds the bearer token settings
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// FromConfig reads AUTH_* keys from cfg
func FromConfig(cfg config.Conf) Config {
	c := cfg.Prefix("AUTH_")
	return Config{
		Secret: c.MustString("JWT_SECRET"),
		Issuer: c.MayString("JWT_ISSUER", "orgcore"),
		TTL:    c.MayDuration("JWT_TTL", time.Hour),
	}
}
