package store

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"socialfeed/internal/db"
	"socialfeed/internal/models"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a Backend.
type Options struct {
	Backend string // file, memory, sqlite or postgres
	DataDir string // file backend directory
	DSN     string // sqlite path or postgres DSN
}

// Store groups the application's collections over one Backend.
type Store struct {
	Users *Collection[models.User]
	Posts *Collection[models.Post]

	backend Backend
}

func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		Users:   NewCollection[models.User](KindUsers, backend, logger),
		Posts:   NewCollection[models.Post](KindPosts, backend, logger),
		backend: backend,
	}
}

// OpenBackend builds the Backend described by opts.
func OpenBackend(opts Options, logger *zap.Logger) (Backend, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileBackend(opts.DataDir)
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendSQLite, BackendPostgres:
		gdb, err := db.Open(opts.Backend, opts.DSN, logger)
		if err != nil {
			return nil, err
		}
		return NewSQLBackend(gdb)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// Open builds the Backend described by opts and wraps it in a Store.
func Open(opts Options, logger *zap.Logger) (*Store, error) {
	backend, err := OpenBackend(opts, logger)
	if err != nil {
		return nil, err
	}
	return New(backend, logger), nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Check loads every collection and returns the first read or decode failure.
func (s *Store) Check(ctx context.Context) (map[Kind]int, error) {
	counts := make(map[Kind]int, len(Kinds))
	users, err := s.Users.Load(ctx)
	if err != nil {
		return counts, err
	}
	counts[KindUsers] = len(users)
	posts, err := s.Posts.Load(ctx)
	if err != nil {
		return counts, err
	}
	counts[KindPosts] = len(posts)
	return counts, nil
}

// CopyTo writes every collection of s into dst, replacing what dst held.
func (s *Store) CopyTo(ctx context.Context, dst *Store) error {
	users, err := s.Users.Load(ctx)
	if err != nil {
		return err
	}
	if err := dst.Users.Save(ctx, users); err != nil {
		return err
	}
	posts, err := s.Posts.Load(ctx)
	if err != nil {
		return err
	}
	return dst.Posts.Save(ctx, posts)
}

// NextUserID returns one past the highest id in users. With no deletions
// this equals len(users)+1, and it never hands out an id twice.
func NextUserID(users []models.User) int {
	highest := 0
	for _, u := range users {
		if u.ID > highest {
			highest = u.ID
		}
	}
	return highest + 1
}

// UserKey converts a numeric user id into the collection's record id.
func UserKey(id int) string {
	return strconv.Itoa(id)
}
