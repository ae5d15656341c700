// memory - in-process реализация storage.Store поверх go-cache.
package memory

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pribylovaa/car-market/internal/storage"
)

// Store хранит значения в памяти процесса без срока жизни.
type Store struct{ c *gocache.Cache }

// New создаёт пустое хранилище. Janitor не запускается: TTL не используется.
func New() *Store {
	return &Store{c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", storage.ErrNotFound
	}

	str, _ := v.(string)
	return str, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.c.Set(key, value, gocache.NoExpiration)
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.c.Delete(k)
	}

	return nil
}

// Len - количество ключей; используется в тестах.
func (s *Store) Len() int { return s.c.ItemCount() }

func (s *Store) Close() error {
	s.c.Flush()
	return nil
}
