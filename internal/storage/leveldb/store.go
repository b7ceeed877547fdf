package leveldb

import (
	"context"
	"errors"
	"fmt"

	ldb "github.com/syndtr/goleveldb/leveldb"
	ldbopt "github.com/syndtr/goleveldb/leveldb/opt"
)

// Store keeps cache entries in an embedded LevelDB database.
type Store struct {
	db *ldb.DB
}

// Open opens or creates the database directory at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("leveldb path is required")
	}
	db, err := ldb.OpenFile(path, &ldbopt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, ldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

// Set writes synchronously so a completed Set survives a crash.
func (s *Store) Set(_ context.Context, key, value string) error {
	return s.db.Put([]byte(key), []byte(value), &ldbopt.WriteOptions{Sync: true})
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
