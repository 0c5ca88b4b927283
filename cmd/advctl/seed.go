package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/adventure/internal/game/adventure"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Encode or decode game seeds",
	}
	cmd.AddCommand(newSeedEncodeCmd(), newSeedDecodeCmd())
	return cmd
}

// seedFlags are the stat range flags shared by seed encode and encounter.
type seedFlags struct {
	origin uint64
	axis   string
	min    float64
	max    float64
}

func (f *seedFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.origin, "origin", 0, "origin event id")
	cmd.Flags().StringVar(&f.axis, "axis", "hp", "stat axis: hp or dipl")
	cmd.Flags().Float64Var(&f.min, "min", 0, "lower bound of the stat range")
	cmd.Flags().Float64Var(&f.max, "max", 0, "upper bound of the stat range")
}

func (f *seedFlags) seed() (adventure.GameSeed, error) {
	axis, err := adventure.ParseAxis(f.axis)
	if err != nil {
		return adventure.GameSeed{}, err
	}
	r := adventure.StatRange{Axis: axis, Min: f.min, Max: f.max}
	if err := r.Validate(); err != nil {
		return adventure.GameSeed{}, err
	}
	return adventure.NewGameSeed(f.origin, r), nil
}

func newSeedEncodeCmd() *cobra.Command {
	var f seedFlags
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode an origin id and stat range into a seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := f.seed()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Uint64())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newSeedDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <seed>",
		Short: "Decode a seed into its origin timestamp and stat range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed %q: %w", args[0], err)
			}
			s := adventure.DecodeGameSeed(n)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seed:      %d\n", s.Uint64())
			fmt.Fprintf(out, "timestamp: %d\n", s.Timestamp())
			fmt.Fprintf(out, "axis:      %s\n", s.Range.Axis)
			fmt.Fprintf(out, "range:     %d-%d\n", int(s.Range.Min), int(s.Range.Max))
			return nil
		},
	}
}
