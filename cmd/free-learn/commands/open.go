package commands

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/drakos74/free-learn/internal/config"
	"github.com/drakos74/free-learn/internal/frame"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/session"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/drakos74/free-learn/internal/storage/badger"
	"github.com/drakos74/free-learn/internal/storage/file/json"
)

const (
	table = "free-learn"
	shard = "datasets"
)

// openStorage creates the persistence for the configured storage kind.
// The returned function releases the storage.
func openStorage(cfg config.Storage) (storage.Persistence, func(), error) {
	closer := func() {}
	var shards storage.Shard
	switch cfg.Kind {
	case config.StorageMemory:
		shards = json.LocalShard()
	case config.StorageJson:
		shards = json.BlobShard(cfg.Path, table)
	case config.StorageBadger:
		db, err := badger.New(badger.Options{Dir: cfg.Path})
		if err != nil {
			return nil, nil, err
		}
		shards = db.Shard()
		closer = func() {
			if err := db.Close(); err != nil {
				fmt.Printf("could not close storage: %v\n", err)
			}
		}
	default:
		shards = storage.VoidShard()
	}
	persistence, err := shards(shard)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return persistence, closer, nil
}

// newSession creates a session, keeping the examples in the configured storage.
func newSession(cfg config.Config, source model.FrameSource) (*session.Session, func(), error) {
	persistence, closer, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open storage: %w", err)
	}
	s, err := session.New(cfg, frame.NewPixelExtractor(cfg.Frame.Size, cfg.Frame.Gray), source, session.WithPersistence(persistence))
	if err != nil {
		closer()
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			fmt.Printf("could not close session: %v\n", err)
		}
		closer()
	}, nil
}

// newSource creates the frame source of the given kind.
// A directory source is restricted to the files of the label, if one is given.
func newSource(kind, dir, rect string, labels model.Labels, label model.Label) (model.FrameSource, error) {
	switch kind {
	case "screen":
		r, err := parseRect(rect)
		if err != nil {
			return nil, err
		}
		return frame.Screen{Rect: r}, nil
	case "dir":
		d, err := frame.NewDirectory(dir, labels)
		if err != nil {
			return nil, err
		}
		if label >= 0 {
			return d.Filter(label), nil
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown source '%s': %w", kind, model.InvalidConfigErr)
}

// parseRect parses 'x0,y0,x1,y1'.
func parseRect(s string) (image.Rectangle, error) {
	if s == "" {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid rect '%s': expected x0,y0,x1,y1", s)
	}
	v := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid rect '%s': %w", s, err)
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}
