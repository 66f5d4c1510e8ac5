package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/service/activity"
	"cloudfiles/internal/service/broadcast"
	"cloudfiles/internal/service/drive"
)

// seedTree is created parent first; existing folders are reused
var seedTree = []struct {
	name   string
	parent string
}{
	{"Documents", ""},
	{"Reports", "Documents"},
	{"Invoices", "Documents"},
	{"Pictures", ""},
	{"Shared", ""},
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a sample folder tree (not in prod)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Environment == "prod" {
				return errors.New("refusing to seed the prod environment")
			}

			// offline: no subscribers, no activity records
			publisher := broadcast.NewDispatcher(broadcast.NewRegistry(a.logger), a.logger)
			recorder := activity.NewClient(config.ActivityConfig{}, a.logger)
			folders := drive.NewFolderService(a.repos.Folders, a.repos.Files, a.repos.TxManager, publisher, recorder, a.logger)

			created, err := seedFolders(cmd.Context(), folders)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d folders\n", created)
			return nil
		},
	}
}

func seedFolders(ctx context.Context, folders services.FolderService) (int, error) {
	ids := map[string]string{}
	created := 0

	for _, s := range seedTree {
		req := &services.CreateFolderRequest{Name: s.name}
		if s.parent != "" {
			parentID := ids[s.parent]
			req.ParentID = &parentID
		}

		folder, err := folders.CreateFolder(ctx, req)
		var conflict *domain.ConflictError
		switch {
		case err == nil:
			ids[s.name] = folder.ID
			created++
		case errors.As(err, &conflict):
			ids[s.name] = conflict.ResourceID
		default:
			return created, fmt.Errorf("create %s: %w", s.name, err)
		}
	}

	return created, nil
}
