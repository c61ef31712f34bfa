package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/dealtracker-backend/internal/deals"
	"github.com/angelmondragon/dealtracker-backend/internal/users"
)

func (a *app) dealsService(c *cobra.Command) (deals.Service, error) {
	client, err := a.database(c.Context())
	if err != nil {
		return nil, err
	}
	return deals.NewService(deals.NewRepository(client.DB()))
}

func newSeedCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert random development data",
	}
	dealsCmd := &cobra.Command{
		Use:   "deals",
		Short: "Insert random deals",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if a.cfg.App.IsProd() {
				return fmt.Errorf("refusing to seed in %s", a.cfg.App.Env)
			}
			svc, err := a.dealsService(c)
			if err != nil {
				return err
			}
			for _, input := range deals.RandomDeals(count, nil) {
				deal, err := svc.Create(c.Context(), input)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\t$%s\n", deal.ID, deal.Title, deal.Price)
			}
			return nil
		},
	}
	dealsCmd.Flags().IntVarP(&count, "count", "n", 10, "number of deals to insert")
	cmd.AddCommand(dealsCmd)
	return cmd
}

func newDealsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Adjust existing deals",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-price <deal-id> <price>",
		Short: "Change a deal's live price; the next scan alerts on drops",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid deal id: %w", err)
			}
			price, err := parsePrice(args[1])
			if err != nil {
				return err
			}
			svc, err := a.dealsService(c)
			if err != nil {
				return err
			}
			return svc.SetPrice(c.Context(), id, price)
		},
	})

	cmd.AddCommand(flagCommand("expire", "Mark a deal expired (true|false)", func(c *cobra.Command, id uuid.UUID, value bool) error {
		svc, err := a.dealsService(c)
		if err != nil {
			return err
		}
		return svc.SetExpired(c.Context(), id, value)
	}))
	cmd.AddCommand(flagCommand("disable", "Hide a deal from users (true|false)", func(c *cobra.Command, id uuid.UUID, value bool) error {
		svc, err := a.dealsService(c)
		if err != nil {
			return err
		}
		return svc.SetDisabled(c.Context(), id, value)
	}))
	return cmd
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(flagCommand("subscribe", "Grant or revoke subscriber status (true|false)", func(c *cobra.Command, id uuid.UUID, value bool) error {
		client, err := a.database(c.Context())
		if err != nil {
			return err
		}
		return users.NewRepository(client.DB()).SetSubscriber(c.Context(), id, value)
	}))
	return cmd
}

// flagCommand builds "<name> <id> [true|false]" where the boolean defaults to true.
func flagCommand(name, short string, apply func(*cobra.Command, uuid.UUID, bool) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id> [true|false]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			value := true
			if len(args) == 2 {
				value, err = strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid flag value %q: %w", args[1], err)
				}
			}
			return apply(c, id, value)
		},
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("price must not be negative")
	}
	return price, nil
}
