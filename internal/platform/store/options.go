package store

import "orgcore/internal/platform/logger"

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger handed to backends
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithRedis injects an already connected client, e.g. miniredis in tests
func WithRedis(c redisClient) Option {
	return func(s *Store) error {
		s.Redis = c
		return nil
	}
}
