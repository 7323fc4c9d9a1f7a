package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"pawshearts/internal/adapter/repo"
	"pawshearts/internal/bootstrap"
	"pawshearts/internal/impact"
	"pawshearts/internal/infra"
	"pawshearts/internal/infra/credentials"
	"pawshearts/internal/middleware"
)

type cli struct {
	cfg    *infra.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "impactctl",
		Short:         "Administer the Paws & Hearts impact ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = infra.NewLogger(cfg.AppEnv, cfg.LogLevel).Output(cmd.ErrOrStderr())
			return nil
		},
	}
	root.AddCommand(
		c.receiptCmd(),
		c.statsCmd(),
		c.goalCmd(),
		c.commissionCmd(),
		c.migrateCmd(),
		c.tokenCmd(),
	)
	return root
}

// withLedger opens the configured store for the duration of fn.
func (c *cli) withLedger(ctx context.Context, fn func(*impact.Service) error) error {
	rt, err := bootstrap.OpenStore(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(impact.NewService(rt.Store, impact.ServiceOptions{Location: c.cfg.Location, Logger: c.logger}))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) receiptCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "receipt", Short: "Manage pet food receipts"}

	var amount, items, supplier, image string
	var meals int64
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a pet food purchase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}
			in := impact.ReceiptInput{Amount: amt, Items: items, Supplier: supplier, ReceiptImage: image}
			if cmd.Flags().Changed("meals") {
				in.Meals = &meals
			}
			return c.withLedger(cmd.Context(), func(svc *impact.Service) error {
				receipt, _, err := svc.AddReceipt(cmd.Context(), in)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), receipt)
			})
		},
	}
	add.Flags().StringVar(&amount, "amount", "", "amount spent in dollars")
	add.Flags().StringVar(&items, "items", "", "description of the purchased items")
	add.Flags().StringVar(&supplier, "supplier", "", "supplier name")
	add.Flags().Int64Var(&meals, "meals", 0, "meals provided (defaults to amount / 2.5)")
	add.Flags().StringVar(&image, "image", "", "receipt image URL")
	_ = add.MarkFlagRequired("amount")
	_ = add.MarkFlagRequired("items")

	cmd.AddCommand(add)
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print detailed impact statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withLedger(cmd.Context(), func(svc *impact.Service) error {
				stats, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
}

func (c *cli) goalCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "goal", Short: "Manage the monthly fundraising goal"}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Set the monthly goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return c.withLedger(cmd.Context(), func(svc *impact.Service) error {
				l, err := svc.SetGoal(cmd.Context(), goal)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "monthly goal set to %s\n", l.MonthlyGoal.StringFixed(2))
				return err
			})
		},
	})
	return cmd
}

func (c *cli) commissionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "commission", Short: "Manage affiliate commissions"}

	var order, amount, asin, date string
	track := &cobra.Command{
		Use:   "track",
		Short: "Record an affiliate commission",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}
			return c.withLedger(cmd.Context(), func(svc *impact.Service) error {
				commission, err := svc.TrackCommission(cmd.Context(), impact.CommissionInput{
					OrderID:     order,
					Amount:      amt,
					ProductASIN: asin,
					Date:        date,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), commission)
			})
		},
	}
	track.Flags().StringVar(&order, "order", "", "affiliate order id")
	track.Flags().StringVar(&amount, "amount", "", "commission in dollars")
	track.Flags().StringVar(&asin, "asin", "", "product ASIN")
	track.Flags().StringVar(&date, "date", "", "order date (RFC 3339)")
	_ = track.MarkFlagRequired("order")
	_ = track.MarkFlagRequired("amount")

	cmd.AddCommand(track)
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations for the configured SQL driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch c.cfg.LedgerDriver {
			case infra.DriverPostgres:
				if err := repo.Migrate(cmd.Context(), c.cfg.DatabaseURL); err != nil {
					return err
				}
			case infra.DriverSQLite:
				// Opening the SQLite store applies pending migrations.
				rt, err := bootstrap.OpenStore(cmd.Context(), c.cfg, c.logger)
				if err != nil {
					return err
				}
				_ = rt.Close()
			default:
				return fmt.Errorf("driver %q has no schema to migrate", c.cfg.LedgerDriver)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s migrations applied\n", c.cfg.LedgerDriver)
			return err
		},
	}
}

func (c *cli) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Manage API and integration tokens"}

	var ttl time.Duration
	var subject string
	mint := &cobra.Command{
		Use:   "mint",
		Short: "Mint an admin JWT for the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.AdminJWTSecret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}
			token, err := middleware.MintAdminToken(c.cfg.AdminJWTSecret, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	mint.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	mint.Flags().StringVar(&subject, "subject", "impactctl", "token subject")

	var accessToken, board string
	pinterestCmd := &cobra.Command{
		Use:   "pinterest",
		Short: "Store the Pinterest access token (postgres only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.LedgerDriver != infra.DriverPostgres {
				return errors.New("pinterest tokens are stored in postgres; set LEDGER_DRIVER=postgres")
			}
			rt, err := bootstrap.OpenStore(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer rt.Close()
			store := credentials.NewStore(rt.Runner)
			if err := store.SetPinterest(cmd.Context(), credentials.PinterestCredentials{AccessToken: accessToken, BoardID: board}); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "pinterest token stored")
			return err
		},
	}
	pinterestCmd.Flags().StringVar(&accessToken, "token", "", "Pinterest access token")
	pinterestCmd.Flags().StringVar(&board, "board", "", "Pinterest board id")
	_ = pinterestCmd.MarkFlagRequired("token")

	cmd.AddCommand(mint, pinterestCmd)
	return cmd
}
