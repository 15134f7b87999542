package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"rentshare-backend/internal/bootstrap"
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository/postgres"
	"rentshare-backend/internal/security"

	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.InitializeWithFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	return cfg, nil
}

// withApp loads config, opens the database and builds the services for the
// duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	db, err := bootstrap.OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	app, err := bootstrap.New(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("Schema is up to date")
			return nil
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <booking-id>",
		Short: "Print a booking and its ledger entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				b, err := app.Store.BookingRepository.GetByID(ctx, args[0])
				if err != nil {
					return err
				}
				txs, err := app.Ledger.GetBookingTransactions(ctx, b.ID)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"booking": b, "transactions": txs})
			})
		},
	}
}

func settleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <booking-id>",
		Short: "Retry completion of a booking whose return is confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				b, res, err := app.Booking.CompleteBooking(ctx, args[0])
				if res != nil {
					if perr := printJSON(res); perr != nil {
						return perr
					}
				}
				if err != nil {
					return err
				}
				fmt.Printf("Booking %s is %s\n", b.ID, b.Status)
				return nil
			})
		},
	}
}

func retryRefundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry-refund <booking-id>",
		Short: "Retry a failed refund: deposit on a completed booking, refund owed on a cancelled one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				b, err := app.Store.BookingRepository.GetByID(ctx, args[0])
				if err != nil {
					return err
				}
				if b.Status == domain.BookingStatusCancelled {
					refunded, err := app.Booking.RetryCancellationRefund(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(refunded)
				}
				res, err := app.Settlement.RetryDepositRefund(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl == 0 {
				ttl = time.Duration(cfg.JWT.AccessTokenExpiry) * time.Minute
			}
			token, err := security.NewTokenManager(cfg.JWT.Secret, ttl).GenerateAccessToken(args[0], email, nil)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Email claim")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to the configured expiry)")
	return cmd
}
