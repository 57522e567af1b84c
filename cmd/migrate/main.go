package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/apartrent/apartment-service/internal/migration"
	"github.com/apartrent/apartment-service/internal/repository"
	"github.com/apartrent/apartment-service/internal/repository/gormstore"
	"github.com/apartrent/apartment-service/internal/repository/mongostore"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy apartment-service data between storage backends",
	}

	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate users, locations and apartments from source to target",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			srcKind, _ := cmd.Flags().GetString("from")
			srcDSN, _ := cmd.Flags().GetString("from-dsn")
			dstKind, _ := cmd.Flags().GetString("to")
			dstDSN, _ := cmd.Flags().GetString("to-dsn")
			dedup, _ := cmd.Flags().GetBool("dedup")

			src, err := openStore(ctx, srcKind, srcDSN, os.Getenv("SOURCE_DB_NAME"))
			if err != nil {
				return fmt.Errorf("open source store: %w", err)
			}
			defer src.Close(ctx)

			dst, err := openStore(ctx, dstKind, dstDSN, os.Getenv("TARGET_DB_NAME"))
			if err != nil {
				return fmt.Errorf("open target store: %w", err)
			}
			defer dst.Close(ctx)

			mode := migration.ModeCopy
			if dedup {
				mode = migration.ModeDedup
			}

			if ok := migration.New(src, dst, mode).Run(ctx); !ok {
				return fmt.Errorf("migration did not complete")
			}
			return nil
		},
	}

	cmd.Flags().String("from", "postgres", "source backend (postgres|sqlite|mongo)")
	cmd.Flags().String("from-dsn", os.Getenv("SOURCE_DSN"), "source DSN, file path or mongo URI")
	cmd.Flags().String("to", "mongo", "target backend (postgres|sqlite|mongo)")
	cmd.Flags().String("to-dsn", os.Getenv("TARGET_DSN"), "target DSN, file path or mongo URI")
	cmd.Flags().Bool("dedup", false, "resolve users by email and locations by address instead of copying blindly")

	return cmd
}

func openStore(ctx context.Context, kind, dsn, dbName string) (repository.Store, error) {
	switch kind {
	case "postgres", "sqlite":
		return gormstore.Open(kind, dsn)
	case "mongo":
		if dbName == "" {
			dbName = "apartments"
		}
		return mongostore.Connect(ctx, dsn, dbName)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}
