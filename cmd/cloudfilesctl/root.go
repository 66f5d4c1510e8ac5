package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/repository"
	"cloudfiles/internal/storage"
)

// app holds what every subcommand needs, built once in PersistentPreRunE
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	repos  *repository.Set
	blobs  services.BlobStorage
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var verbose bool

	root := &cobra.Command{
		Use:   "cloudfilesctl",
		Short: "Maintenance tool for the cloudfiles store",
		Long: `cloudfilesctl checks and repairs the consistency of folder paths, file
records and stored blobs. It reads the same environment as the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.repos != nil {
				a.repos.Close()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newReconcileCmd(a),
		newVerifyPathsCmd(a),
		newSeedCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, verbose bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	a.cfg = cfg

	if a.repos, err = repository.Setup(ctx, cfg, a.logger); err != nil {
		return err
	}
	if a.blobs, err = storage.New(ctx, cfg); err != nil {
		return fmt.Errorf("set up storage: %w", err)
	}
	return nil
}
