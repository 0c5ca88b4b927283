package postgres_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/adventure/internal/storage"
	"github.com/cory-johannsen/adventure/internal/storage/postgres"
	"github.com/cory-johannsen/adventure/internal/testutil"
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestAdventurerRepository_SaveLoad(t *testing.T) {
	repo := postgres.NewAdventurerRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uniqueID("adv")

	require.NoError(t, repo.Save(ctx, id, []byte(`{"exp": 10, "lvl": 2}`)))
	got, err := repo.Load(ctx, id)
	require.NoError(t, err)
	// JSONB normalizes whitespace, so compare documents.
	assert.JSONEq(t, `{"exp":10,"lvl":2}`, string(got))
}

func TestAdventurerRepository_SaveOverwrites(t *testing.T) {
	repo := postgres.NewAdventurerRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uniqueID("adv")

	require.NoError(t, repo.Save(ctx, id, []byte(`{"lvl":1}`)))
	require.NoError(t, repo.Save(ctx, id, []byte(`{"lvl":5}`)))
	got, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lvl":5}`, string(got))
}

func TestAdventurerRepository_LoadMissing(t *testing.T) {
	repo := postgres.NewAdventurerRepository(testutil.NewPool(t))
	_, err := repo.Load(context.Background(), uniqueID("missing"))
	assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
}

func TestAdventurerRepository_Delete(t *testing.T) {
	repo := postgres.NewAdventurerRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uniqueID("adv")

	require.NoError(t, repo.Save(ctx, id, []byte(`{}`)))
	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), storage.ErrCharacterNotFound)
}

func TestAdventurerRepository_RejectsNonJSON(t *testing.T) {
	repo := postgres.NewAdventurerRepository(testutil.NewPool(t))
	err := repo.Save(context.Background(), uniqueID("adv"), []byte(`not json`))
	assert.Error(t, err)
}

func TestAdventurerRepository_Property_SaveThenLoad(t *testing.T) {
	repo := postgres.NewAdventurerRepository(testutil.NewPool(t))
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		id := uniqueID("prop")
		exp := rapid.IntRange(0, 1_000_000).Draw(rt, "exp")
		lvl := rapid.IntRange(1, 100).Draw(rt, "lvl")
		blob, _ := json.Marshal(map[string]int{"exp": exp, "lvl": lvl})
		if err := repo.Save(ctx, id, blob); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := repo.Load(ctx, id)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		var out map[string]int
		if err := json.Unmarshal(got, &out); err != nil {
			rt.Fatalf("decode: %v", err)
		}
		if out["exp"] != exp || out["lvl"] != lvl {
			rt.Fatalf("got %v, want exp=%d lvl=%d", out, exp, lvl)
		}
	})
}
