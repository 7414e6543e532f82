package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	mongoMigration "dormitory/internal/migrations/mongo"
	"dormitory/pkg/config"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

const JobName = "mongo-migration"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Dormitory MongoDB migration tool",
		SilenceUsage: true,
	}
	root.PersistentFlags().Duration("timeout", 2*time.Minute, "Overall deadline for the command")

	root.AddCommand(upCmd(), statusCmd(), seedCmd())
	return root
}

// withDatabase connects using the service configuration and runs fn against
// the configured database.
func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, db *mongo.Database) error) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	return fn(ctx, cfg, cfg.Client.Database(cfg.MongoDatabaseName))
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create collections, validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(ctx context.Context, cfg *config.Config, db *mongo.Database) error {
				cfg.Log.Info("Starting Mongo migration job")
				if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Println("Migration completed successfully.")
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which collections and indexes exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(ctx context.Context, cfg *config.Config, db *mongo.Database) error {
				statuses, err := mongoMigration.Status(ctx, db)
				if err != nil {
					return err
				}

				fmt.Printf("%-16s  %-8s  %-10s  %s\n", "Collection", "Exists", "Documents", "Missing indexes")
				for _, s := range statuses {
					missing := "-"
					if len(s.MissingIndexes) > 0 {
						missing = strings.Join(s.MissingIndexes, ", ")
					}
					fmt.Printf("%-16s  %-8t  %-10d  %s\n", s.Name, s.Exists, s.Documents, missing)
				}
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	var opts mongoMigration.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo rooms, tenants and bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Rooms < 0 || opts.Tenants < 0 || opts.Bookings < 0 {
				return fmt.Errorf("counts must not be negative")
			}
			return withDatabase(cmd, func(ctx context.Context, cfg *config.Config, db *mongo.Database) error {
				result, err := mongoMigration.Seed(ctx, db, cfg, opts)
				if err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				fmt.Printf("Seeded %d rooms, %d tenants, %d bookings.\n", result.Rooms, result.Tenants, result.Bookings)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&opts.Rooms, "rooms", 10, "Number of rooms to create")
	cmd.Flags().IntVar(&opts.Tenants, "tenants", 8, "Number of tenants to create")
	cmd.Flags().IntVar(&opts.Bookings, "bookings", 5, "Number of bookings to create")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", uint64(time.Now().UnixNano()), "Random seed for generated data")

	return cmd
}
