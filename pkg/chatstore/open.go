package chatstore

import (
	"context"
	"fmt"
	"strings"
)

// Drivers accepted by Open.
const (
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
)

// Config selects and configures a driver.
type Config struct {
	Driver string
	// Limit caps the messages Load returns; zero returns all.
	Limit     int
	ProjectID string
	DSN       string
}

// Open builds the configured store. An empty driver means memory. The
// postgres driver runs Migrate before returning.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemoryStore(cfg.Limit), nil
	case DriverFirestore:
		env, err := LoadFirebaseEnv()
		if err != nil {
			return nil, err
		}
		return NewFirestoreStore(ctx, cfg.ProjectID, env, cfg.Limit)
	case DriverPostgres:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, fmt.Errorf("chatstore: postgres driver requires a dsn")
		}
		s, err := NewPostgresStore(ctx, cfg.DSN, cfg.Limit)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("chatstore: unsupported driver %q", cfg.Driver)
	}
}
