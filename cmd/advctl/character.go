package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/adventure/internal/adventurer"
	"github.com/cory-johannsen/adventure/internal/game/character"
	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

// itemName joins the remaining args so unquoted multi-word names work.
func itemName(args []string) string {
	return strings.Join(args, " ")
}

func newSheetCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "sheet <character-id>",
		Short: "Print a character sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.View(ctx, args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}
			fmt.Fprint(cmd.OutOrStdout(), c.Sheet(name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name for the sheet header")
	return cmd
}

func newBackpackCmd(a *app) *cobra.Command {
	var (
		forging  bool
		consumed []string
	)
	cmd := &cobra.Command{
		Use:   "backpack <character-id>",
		Short: "List a character's backpack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.View(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), c.BackpackListing(forging, consumed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&forging, "forging", false, "hide forged and consumed items")
	cmd.Flags().StringSliceVar(&consumed, "consumed", nil, "item names already consumed by a forge")
	return cmd
}

func newEquipCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "equip <character-id> <item>",
		Short: "Equip an item from the backpack",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.Equip(ctx, args[0], itemName(args[1:]))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), c.EquipmentListing())
			return nil
		},
	}
}

func newUnequipCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unequip <character-id> <item>",
		Short: "Return a worn item to the backpack",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.Unequip(ctx, args[0], itemName(args[1:]))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), c.EquipmentListing())
			return nil
		},
	}
}

func newLootCmd(a *app) *cobra.Command {
	var payload string
	cmd := &cobra.Command{
		Use:   "loot <character-id> <rendered-item>",
		Short: "Grant an item to a character's backpack",
		Long: `Grants an item. The item is given by its rendered name, rarity markup
included, and a JSON payload such as {"slot":["right"],"att":3,"cha":0}.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p inventory.Payload
			if err := json.Unmarshal([]byte(payload), &p); err != nil {
				return fmt.Errorf("invalid --payload: %w", err)
			}
			item, err := inventory.Parse(itemName(args[1:]), p)
			if err != nil {
				return err
			}

			ctx, cancel := a.context()
			defer cancel()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.AddLoot(ctx, args[0], item)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), c.BackpackListing(false, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&payload, "payload", "", "item payload as JSON")
	_ = cmd.MarkFlagRequired("payload")
	return cmd
}

func newLoadoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadout",
		Short: "Manage saved loadouts",
	}

	mutation := func(use, short string, run func(ctx context.Context, svc *adventurer.Service, id, name string) (*character.Character, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <character-id> <loadout>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := a.context()
				defer cancel()
				svc, err := a.service(ctx)
				if err != nil {
					return err
				}
				c, err := run(ctx, svc, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), c.EquipmentListing())
				return nil
			},
		}
	}
	cmd.AddCommand(
		mutation("save", "Save the current equipment as a loadout", func(ctx context.Context, svc *adventurer.Service, id, name string) (*character.Character, error) {
			return svc.SaveLoadout(ctx, id, name)
		}),
		mutation("apply", "Re-equip a saved loadout", func(ctx context.Context, svc *adventurer.Service, id, name string) (*character.Character, error) {
			return svc.ApplyLoadout(ctx, id, name)
		}),
		mutation("delete", "Delete a saved loadout", func(ctx context.Context, svc *adventurer.Service, id, name string) (*character.Character, error) {
			return svc.DeleteLoadout(ctx, id, name)
		}),
		newLoadoutListCmd(a),
	)
	return cmd
}

func newLoadoutListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <character-id>",
		Short: "List saved loadouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			c, err := svc.View(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			names := c.LoadoutNames()
			if len(names) == 0 {
				fmt.Fprintln(out, "No saved loadouts.")
				return nil
			}
			for _, name := range names {
				l, _ := c.Loadout(name)
				fmt.Fprintf(out, "%s:\n", name)
				for _, s := range inventory.AllSlots() {
					if r := l.Rendered(s); r != "" {
						fmt.Fprintf(out, "  %-6s %s\n", s, r)
					}
				}
			}
			return nil
		},
	}
}
