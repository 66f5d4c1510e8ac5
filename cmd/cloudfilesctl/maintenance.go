package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cloudfiles/internal/service/drive"
)

func (a *app) maintenance() *drive.Maintenance {
	return drive.NewMaintenance(a.repos.Folders, a.repos.Files, a.blobs, a.repos.TxManager, a.logger)
}

func newReconcileCmd(a *app) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "List file records whose blob is missing from storage",
		Long: `reconcile compares every file record with the storage backend and lists
records whose blob no longer exists. With --prune those records are deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.maintenance().Reconcile(cmd.Context(), prune)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range report.Dangling {
				fmt.Fprintf(out, "dangling\t%s\t%s\t%s\n", f.ID, f.Name, f.StorageKey)
			}
			fmt.Fprintf(out, "checked %d files, %d dangling, %d pruned\n", report.Checked, len(report.Dangling), report.Pruned)
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "delete dangling records")
	return cmd
}

func newVerifyPathsCmd(a *app) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "verify-paths",
		Short: "Check that every folder path matches its parent chain",
		Long: `verify-paths recomputes the path of every folder from its name and its
parent's path. With --repair wrong paths are rewritten top-down inside one
locked transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.maintenance().VerifyPaths(cmd.Context(), repair)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, v := range report.Violations {
				fmt.Fprintf(out, "mismatch\t%s\tstored=%s\texpected=%s\n", v.FolderID, v.Stored, v.Expected)
			}
			fmt.Fprintf(out, "checked %d folders, %d violations, %d repaired\n", report.Checked, len(report.Violations), report.Repaired)

			if len(report.Violations) > report.Repaired {
				return fmt.Errorf("%d folder paths are inconsistent", len(report.Violations)-report.Repaired)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "rewrite inconsistent paths")
	return cmd
}
