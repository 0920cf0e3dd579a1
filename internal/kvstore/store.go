// Package kvstore holds the key-value slot backends that favorites are
// mirrored to.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverLevelDB  = "leveldb"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"

	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrClosed        = errors.New("storage closed")
)

// Store is a flat byte-valued key-value store. Get reports ok=false for a
// missing key rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Driver        string
	Path          string
	DSN           string
	RedisAddr     string
	RedisPassword string
}

func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverMemory:
		return NewMemStore(), nil
	case DriverLevelDB, "":
		return OpenLevelDB(cfg.Path)
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case DriverRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
