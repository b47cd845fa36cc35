package internal

import "github.com/bwservices06-art/bwservicesweb/internal/store"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	store  *store.SQLite
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStore runs the application on an already opened store instead of
// opening store.path. The caller keeps ownership and closes it.
func WithStore(s *store.SQLite) Option {
	return func(a *application) {
		a.store = s
	}
}
