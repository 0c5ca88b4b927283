package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/adventure"
	"github.com/cory-johannsen/adventure/internal/game/dice"
	"github.com/cory-johannsen/adventure/internal/game/encounter"
	"github.com/cory-johannsen/adventure/internal/scripting"
)

// newEncounterCmd previews the encounter a seed produces without touching
// any store. Either --seed or the stat range flags select the encounter.
func newEncounterCmd(a *app) *cobra.Command {
	var (
		f           seedFlags
		seedValue   uint64
		group       string
		bestiaryDir string
		scriptDir   string
	)
	cmd := &cobra.Command{
		Use:   "encounter",
		Short: "Preview the encounter generated from a seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var seed adventure.GameSeed
			switch {
			case cmd.Flags().Changed("seed"):
				seed = adventure.DecodeGameSeed(seedValue)
			case cmd.Flags().Changed("min") || cmd.Flags().Changed("max"):
				s, err := f.seed()
				if err != nil {
					return err
				}
				seed = s
			default:
				return errors.New("either --seed or --min/--max is required")
			}

			logger := a.logger
			if logger == nil {
				logger = zap.NewNop()
			}
			monsters, err := encounter.LoadBestiary(bestiaryDir)
			if err != nil {
				return err
			}
			roller := dice.NewLoggedRoller(logger)
			var scripts *scripting.Manager
			if scriptDir != "" {
				scripts = scripting.NewManager(roller, logger)
				defer scripts.Close()
				if err := scripts.LoadGlobal(scriptDir, 0); err != nil {
					return err
				}
			}
			gen, err := encounter.NewGenerator(monsters, adventure.NewResults(0), roller, scripts, logger)
			if err != nil {
				return err
			}

			e := gen.FromSeed(group, seed)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seed:    %s\n", e.Seed)
			name := e.Monster.Name
			if e.Monster.Boss {
				name += " (boss)"
			}
			fmt.Fprintf(out, "monster: %s\n", name)
			fmt.Fprintf(out, "hp:      %d\n", e.Monster.HP)
			fmt.Fprintf(out, "dipl:    %d\n", e.Monster.Diplomacy)
			fmt.Fprintf(out, "roll:    %d\n", e.ScaleRoll.Total())
			fmt.Fprintf(out, "loot:    %d currency, %s\n", e.Loot.Currency, e.Loot.Chests)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "encoded seed to replay")
	cmd.Flags().StringVar(&group, "group", "", "group the encounter is for")
	cmd.Flags().StringVar(&bestiaryDir, "bestiary", "content/bestiary", "bestiary directory")
	cmd.Flags().StringVar(&scriptDir, "scripts", "", "optional Lua hook directory")
	return cmd
}
