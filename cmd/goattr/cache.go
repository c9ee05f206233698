package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/goattr/internal/storage"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the discovery cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print the number and size of cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, release, err := a.maintainer()
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			stats, err := m.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, stats)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "entries",
		Short: "List cached keys, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, release, err := a.maintainer()
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			sqlite, ok := m.(*storage.SQLiteStorage)
			if !ok {
				return fmt.Errorf("cache backend %q does not list entries", a.cfg.Cache.Backend)
			}
			entries, err := sqlite.Entries(cmd.Context())
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []storage.Entry{}
			}
			return writeJSON(cmd, entries)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [KEY...]",
		Short: "Delete the given keys, or every entry when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.maintainer()
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			if len(args) == 0 {
				if err := m.Clear(cmd.Context()); err != nil {
					return err
				}
				a.logger.Info("cache cleared")
				return nil
			}
			for _, key := range args {
				if err := m.Delete(cmd.Context(), key); err != nil {
					return fmt.Errorf("failed to delete %s: %w", key, err)
				}
			}
			a.logger.Info("cache entries deleted", "count", len(args))
			return nil
		},
	})

	return cmd
}
