// Package adventurer runs character operations against the blob store. Every
// mutation holds the character's lock across load, mutate and save, so two
// commands for one character never interleave.
package adventurer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/character"
	"github.com/cory-johannsen/adventure/internal/game/inventory"
	"github.com/cory-johannsen/adventure/internal/observability"
	"github.com/cory-johannsen/adventure/internal/storage"
)

// ErrLockTimeout is returned when a character's lock could not be acquired
// within the configured wait.
var ErrLockTimeout = errors.New("timed out waiting for character lock")

// DefaultLockWait is used when a Service is built with a non-positive wait.
const DefaultLockWait = 5 * time.Second

// Store loads and saves character blobs.
type Store interface {
	// Load returns storage.ErrCharacterNotFound for an unknown id.
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, blob []byte) error
}

// Bank reports a character's currency balance.
type Bank interface {
	Balance(ctx context.Context, id string) (int64, error)
}

// Locker provides mutual exclusion per character id.
type Locker interface {
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// Service is safe for concurrent use.
type Service struct {
	store    Store
	locker   Locker
	bank     Bank
	metrics  *observability.Metrics
	lockWait time.Duration
	logger   *zap.Logger
}

// NewService creates a Service. bank and metrics may be nil.
//
// Precondition: store, locker and logger must be non-nil.
func NewService(store Store, locker Locker, bank Bank, metrics *observability.Metrics, lockWait time.Duration, logger *zap.Logger) *Service {
	if store == nil || locker == nil || logger == nil {
		panic("adventurer.NewService: store, locker and logger must be non-nil")
	}
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Service{
		store:    store,
		locker:   locker,
		bank:     bank,
		metrics:  metrics,
		lockWait: lockWait,
		logger:   logger,
	}
}

// Mutate locks the character, loads it, applies fn and saves the result. When
// fn returns an error nothing is saved and the error is returned unchanged.
// A character with no stored blob starts from the default character.
//
// Postcondition: the returned Character reflects the saved state and carries
// the bank balance when a Bank is configured.
func (s *Service) Mutate(ctx context.Context, id, op string, fn func(*character.Character) error) (_ *character.Character, err error) {
	var c *character.Character
	defer func() { s.observe(op, c, err) }()

	release, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	c, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}

	blob, err := c.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, id, err)
	}
	if err := s.store.Save(ctx, id, blob); err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, id, err)
	}
	if err := s.attachBalance(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// View loads the character without locking. Concurrent saves replace the blob
// whole, so a view is never torn.
func (s *Service) View(ctx context.Context, id string) (*character.Character, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.addAnomalies(c)
	if err := s.attachBalance(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Equip equips one copy of the named backpack item.
func (s *Service) Equip(ctx context.Context, id, name string) (*character.Character, error) {
	return s.Mutate(ctx, id, "equip", func(c *character.Character) error {
		return c.EquipFromBackpack(name)
	})
}

// Unequip returns the named worn item to the backpack.
func (s *Service) Unequip(ctx context.Context, id, name string) (*character.Character, error) {
	return s.Mutate(ctx, id, "unequip", func(c *character.Character) error {
		item, ok := c.EquippedNamed(name)
		if !ok {
			return fmt.Errorf("unequip %q: %w", name, character.ErrItemNotFound)
		}
		c.Unequip(item)
		return nil
	})
}

// SaveLoadout snapshots the current equipment under name.
func (s *Service) SaveLoadout(ctx context.Context, id, name string) (*character.Character, error) {
	return s.Mutate(ctx, id, "save_loadout", func(c *character.Character) error {
		_, err := c.SaveLoadout(name)
		return err
	})
}

// ApplyLoadout re-equips the named loadout from the backpack.
func (s *Service) ApplyLoadout(ctx context.Context, id, name string) (*character.Character, error) {
	return s.Mutate(ctx, id, "apply_loadout", func(c *character.Character) error {
		return c.ApplyLoadout(name)
	})
}

// DeleteLoadout removes the named loadout.
func (s *Service) DeleteLoadout(ctx context.Context, id, name string) (*character.Character, error) {
	return s.Mutate(ctx, id, "delete_loadout", func(c *character.Character) error {
		return c.DeleteLoadout(name)
	})
}

// AddLoot stores item in the backpack.
func (s *Service) AddLoot(ctx context.Context, id string, item *inventory.Item) (*character.Character, error) {
	return s.Mutate(ctx, id, "add_loot", func(c *character.Character) error {
		return c.AddLoot(item)
	})
}

func (s *Service) acquire(ctx context.Context, id string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	start := time.Now()
	release, err := s.locker.Acquire(lockCtx, id)
	if s.metrics != nil {
		s.metrics.ObserveLockWait(time.Since(start))
	}
	if err != nil {
		if ctx.Err() == nil && errors.Is(lockCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("character %s after %s: %w", id, s.lockWait, ErrLockTimeout)
		}
		return nil, fmt.Errorf("locking character %s: %w", id, err)
	}
	return release, nil
}

func (s *Service) load(ctx context.Context, id string) (*character.Character, error) {
	blob, err := s.store.Load(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrCharacterNotFound) {
		return nil, fmt.Errorf("loading character %s: %w", id, err)
	}
	return character.Decode(id, blob, s.logger)
}

func (s *Service) attachBalance(ctx context.Context, c *character.Character) error {
	if s.bank == nil {
		return nil
	}
	bal, err := s.bank.Balance(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("balance of %s: %w", c.ID, err)
	}
	c.Balance = bal
	return nil
}

func (s *Service) observe(op string, c *character.Character, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveMutation(op, err)
	if c != nil {
		s.addAnomalies(c)
	}
}

func (s *Service) addAnomalies(c *character.Character) {
	if s.metrics != nil {
		s.metrics.AddAnomalies(c.Anomalies())
	}
}
