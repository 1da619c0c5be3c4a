package storage

import (
	"errors"
	"fmt"
)

var (
	// DefaultDir is the root directory for file based storage.
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key for a general implementation
type Key struct {
	Hash  int64  `json:"hash"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Path returns the flat representation of the key, usable as a file name.
func (k Key) Path() string {
	return fmt.Sprintf("%s_%v_%s", k.Name, k.Hash, k.Label)
}

// Persistence stores and loads values by key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
