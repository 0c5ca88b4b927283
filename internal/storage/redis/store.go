package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/adventure/internal/storage"
)

const characterKeyPrefix = "adventure:character:"

// Store keeps each character blob as a plain string value under
// adventure:character:<id>.
type Store struct {
	client Client
}

// NewStore returns a Store using client.
//
// Precondition: client must be non-nil.
func NewStore(client Client) *Store {
	return &Store{client: client}
}

func characterKey(id string) string {
	return characterKeyPrefix + id
}

// Load returns the stored blob for id, or storage.ErrCharacterNotFound.
func (s *Store) Load(ctx context.Context, id string) ([]byte, error) {
	blob, err := s.client.Get(ctx, characterKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("loading character %q: %w", id, err)
	}
	return blob, nil
}

// Save replaces the blob for id. Blobs never expire.
func (s *Store) Save(ctx context.Context, id string, blob []byte) error {
	if err := s.client.Set(ctx, characterKey(id), blob, 0).Err(); err != nil {
		return fmt.Errorf("saving character %q: %w", id, err)
	}
	return nil
}

// Delete removes the blob for id, returning storage.ErrCharacterNotFound when
// there was none.
func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, characterKey(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting character %q: %w", id, err)
	}
	if n == 0 {
		return storage.ErrCharacterNotFound
	}
	return nil
}
