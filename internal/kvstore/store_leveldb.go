package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	lderrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// LevelDBStore keeps the slot in an on-disk LevelDB directory, the local
// equivalent of device storage.
type LevelDBStore struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDBStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("leveldb path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create leveldb parent dir: %w", err)
	}

	db, err := leveldb.OpenFile(path, nil)
	if lderrors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.db.GetProperty("leveldb.num-files-at-level0")
	return mapLevelDBErr(err)
}

func (s *LevelDBStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	v, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapLevelDBErr(err)
	}
	return v, true, nil
}

func (s *LevelDBStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapLevelDBErr(s.db.Put([]byte(key), value, nil))
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

func mapLevelDBErr(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return ErrClosed
	}
	return err
}
