package badger

import (
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/drakos74/free-learn/internal/storage"
)

// Options configures the badger backed storage.
type Options struct {
	// Dir is the directory for the badger data files.
	Dir string
	// InMemory runs badger without disk persistence.
	InMemory bool
}

// Storage is a storage.Persistence backed by badger, encoding values with msgpack.
// Keys are namespaced by the shard name.
type Storage struct {
	db    *badger.DB
	shard string
	owner bool
}

// New opens a badger database.
func New(opts Options) (*Storage, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(logger{})
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(logger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger at '%s': %w", opts.Dir, err)
	}
	return &Storage{db: db, owner: true}, nil
}

// Shard returns a shard constructor sharing the database of the storage.
func (s *Storage) Shard() storage.Shard {
	return func(shard string) (storage.Persistence, error) {
		if strings.Contains(shard, "/") {
			return nil, fmt.Errorf("invalid shard name '%s'", shard)
		}
		return &Storage{db: s.db, shard: shard}, nil
	}
}

func (s *Storage) key(k storage.Key) []byte {
	return []byte(fmt.Sprintf("%s/%s", s.shard, k.Path()))
}

func (s *Storage) Store(k storage.Key, value interface{}) error {
	bb, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value for '%s': %w", k.Path(), err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(k), bb)
	})
}

func (s *Storage) Load(k storage.Key, value interface{}) error {
	var bb []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(k))
		if err != nil {
			return err
		}
		bb, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("not found '%v': %w", k, storage.NotFoundErr)
	}
	if err != nil {
		return fmt.Errorf("could not read '%s': %w", k.Path(), err)
	}
	if err := msgpack.Unmarshal(bb, value); err != nil {
		return fmt.Errorf("could not decode '%s': %v: %w", k.Path(), err, storage.CouldNotLoadErr)
	}
	return nil
}

// Close releases the database, if this storage opened it.
func (s *Storage) Close() error {
	if !s.owner {
		return nil
	}
	return s.db.Close()
}

// logger routes badger logs to zerolog, dropping debug and info output.
type logger struct{}

func (logger) Errorf(f string, v ...interface{}) {
	log.Error().Str("store", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (logger) Warningf(f string, v ...interface{}) {
	log.Warn().Str("store", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (logger) Infof(string, ...interface{}) {}

func (logger) Debugf(string, ...interface{}) {}
