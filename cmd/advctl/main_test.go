package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/adventure/internal/game/adventure"
	"github.com/cory-johannsen/adventure/internal/game/character"
)

func execute(a *app, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedEncodeDecode(t *testing.T) {
	origin := uint64(1234) << 30
	out, err := execute(&app{}, "seed", "encode",
		"--origin", strconv.FormatUint(origin, 10), "--axis", "hp", "--min", "75", "--max", "200")
	require.NoError(t, err)

	n, err := strconv.ParseUint(strings.TrimSpace(out), 10, 64)
	require.NoError(t, err)
	want := adventure.NewGameSeed(origin, adventure.StatRange{Axis: adventure.AxisHP, Min: 75, Max: 200})
	assert.Equal(t, want.Uint64(), n)

	out, err = execute(&app{}, "seed", "decode", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Contains(t, out, "axis:      hp")
	assert.Contains(t, out, "range:     75-200")
}

func TestSeedEncodeRejectsInvalidRange(t *testing.T) {
	_, err := execute(&app{}, "seed", "encode", "--axis", "hp", "--min", "300", "--max", "200")
	assert.Error(t, err)

	_, err = execute(&app{}, "seed", "encode", "--axis", "mana", "--min", "1", "--max", "2")
	assert.Error(t, err)
}

func TestSeedDecodeRejectsGarbage(t *testing.T) {
	_, err := execute(&app{}, "seed", "decode", "not-a-number")
	assert.Error(t, err)
}

func TestEncounterFromRange(t *testing.T) {
	out, err := execute(&app{}, "encounter",
		"--bestiary", filepath.Join("..", "..", "content", "bestiary"),
		"--axis", "hp", "--min", "1000", "--max", "1023")
	require.NoError(t, err)
	assert.Contains(t, out, "monster: Ancient Dragon (boss)")
}

func TestEncounterReplaysSeed(t *testing.T) {
	bestiary := filepath.Join("..", "..", "content", "bestiary")
	seed := adventure.NewGameSeed(uint64(77)<<30, adventure.StatRange{Axis: adventure.AxisDiplomacy, Min: 100, Max: 150})
	arg := strconv.FormatUint(seed.Uint64(), 10)

	first, err := execute(&app{}, "encounter", "--bestiary", bestiary, "--seed", arg)
	require.NoError(t, err)
	second, err := execute(&app{}, "encounter", "--bestiary", bestiary, "--seed", arg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncounterRequiresSeedOrRange(t *testing.T) {
	_, err := execute(&app{}, "encounter", "--bestiary", filepath.Join("..", "..", "content", "bestiary"))
	assert.ErrorContains(t, err, "--seed")
}

// writeRedisConfig points a config file at mr for both store and lock.
func writeRedisConfig(t *testing.T, mr *miniredis.Miniredis) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "advctl.yaml")
	body := fmt.Sprintf(`
logging:
  level: error
  format: json
redis:
  addr: %s
adventure:
  store: redis
  lock: redis
  lock_ttl: 5s
  lock_wait: 2s
`, mr.Addr())
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestCharacterCommandsAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeRedisConfig(t, mr)
	a := &app{}
	t.Cleanup(a.close)

	run := func(args ...string) string {
		t.Helper()
		out, err := execute(a, append([]string{"--config", cfg}, args...)...)
		require.NoError(t, err, "advctl %v", args)
		return out
	}

	out := run("loot", "hero", "[Flame Sword]", "--payload", `{"slot":["right"],"att":5,"cha":1}`)
	assert.Contains(t, out, "[Flame Sword]")
	assert.True(t, mr.Exists("adventure:character:hero"))

	out = run("equip", "hero", "Flame", "Sword")
	assert.Contains(t, out, "[Flame Sword] - (ATT: 5 | DPL: 1)")

	run("loadout", "save", "hero", "duel")
	out = run("loadout", "list", "hero")
	assert.Contains(t, out, "duel:")
	assert.Contains(t, out, "[Flame Sword]")

	run("unequip", "hero", "Flame Sword")
	out = run("sheet", "hero", "--name", "Aria")
	assert.Contains(t, out, "[Aria's Character Sheet]")
	assert.Contains(t, out, "ATTACK: 0")

	out = run("backpack", "hero")
	assert.Contains(t, out, "[Flame Sword]")
	out = run("backpack", "hero", "--forging", "--consumed", "Flame Sword")
	assert.NotContains(t, out, "Flame Sword")

	out = run("loadout", "apply", "hero", "duel")
	assert.Contains(t, out, "[Flame Sword] - (ATT: 5 | DPL: 1)")

	run("loadout", "delete", "hero", "duel")
	out = run("loadout", "list", "hero")
	assert.Contains(t, out, "No saved loadouts.")
}

func TestEquipUnknownItemFails(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeRedisConfig(t, mr)
	a := &app{}
	t.Cleanup(a.close)

	_, err := execute(a, "--config", cfg, "equip", "hero", "Nothing")
	assert.ErrorIs(t, err, character.ErrItemNotFound)
	assert.False(t, mr.Exists("adventure:character:hero"))
}

func TestLootRejectsBadPayload(t *testing.T) {
	_, err := execute(&app{}, "loot", "hero", "Stick", "--payload", "{")
	assert.ErrorContains(t, err, "--payload")
}

func TestServiceFailsOnMissingConfig(t *testing.T) {
	a := &app{configPath: filepath.Join(t.TempDir(), "missing.yaml")}
	t.Cleanup(a.close)
	_, err := a.service(t.Context())
	assert.Error(t, err)
}

func TestPropertySeedRoundTripsThroughCLI(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.IntRange(0, adventure.MaxStat).Draw(t, "min")
		hi := rapid.IntRange(lo, adventure.MaxStat).Draw(t, "max")
		axis := rapid.SampledFrom([]string{"hp", "dipl"}).Draw(t, "axis")

		out, err := execute(&app{}, "seed", "encode", "--axis", axis,
			"--min", strconv.Itoa(lo), "--max", strconv.Itoa(hi))
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		out, err = execute(&app{}, "seed", "decode", strings.TrimSpace(out))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.Contains(out, fmt.Sprintf("range:     %d-%d", lo, hi)) || !strings.Contains(out, "axis:      "+axis) {
			t.Fatalf("unexpected decode output:\n%s", out)
		}
	})
}

func TestBalanceRequiresPostgres(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeRedisConfig(t, mr)
	a := &app{}
	t.Cleanup(a.close)

	_, err := execute(a, "--config", cfg, "balance", "hero")
	assert.ErrorContains(t, err, "postgres")
}
