package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egekaya1/git-sim/internal/config"
	"github.com/egekaya1/git-sim/internal/snapshot"
)

func newSnapshotCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and restore repository states via git bundles",
	}

	manager := func() (*snapshot.Manager, error) {
		cfg, err := config.Load(opts.repoPath)
		if err != nil {
			return nil, err
		}
		return snapshot.NewManager(opts.repoPath, cfg.SnapshotDir), nil
	}

	var (
		description string
		tags        []string
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Snapshot the current repository state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			snap, err := m.Create(args[0], description, tags)
			if err != nil {
				return err
			}
			fmt.Printf("Created snapshot %s (%s) at %s\n", snap.Name, snap.ID, snap.HeadSHA[:7])
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "snapshot description")
	create.Flags().StringSliceVarP(&tags, "tag", "t", nil, "snapshot tags")

	var filterTag string
	list := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			snapshots, err := m.List(filterTag)
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				fmt.Println("No snapshots")
				return nil
			}
			for _, s := range snapshots {
				fmt.Printf("%s  %-20s %s  %s\n", s.ID, s.Name, s.HeadSHA[:7], s.CreatedAt)
			}
			return nil
		},
	}
	list.Flags().StringVarP(&filterTag, "tag", "t", "", "filter by tag")

	var hard bool
	restore := &cobra.Command{
		Use:   "restore <id|name>",
		Short: "Restore the repository to a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			mode := "soft"
			if hard {
				mode = "hard"
			}
			msg, err := m.Restore(args[0], mode)
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
	restore.Flags().BoolVar(&hard, "hard", false, "hard restore (discard local changes)")

	del := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a snapshot and its bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			ok, err := m.Delete(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("snapshot not found: %s", args[0])
			}
			fmt.Println("Deleted")
			return nil
		},
	}

	cmd.AddCommand(create, list, restore, del)
	return cmd
}
