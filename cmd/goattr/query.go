package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/goattr/pkg/types"
)

func newUsagesCmd(a *app) *cobra.Command {
	var ascend bool
	cmd := &cobra.Command{
		Use:   "usages DESCRIPTOR [ROOT...]",
		Short: "List classes carrying a descriptor on themselves, a parent, or a method",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, release, err := a.discovery(cmd.Context(), args[0], ascend)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			roots, err := a.roots(args[1:])
			if err != nil {
				return err
			}
			usages, err := p.FindUsages(cmd.Context(), roots...)
			if err != nil {
				return err
			}
			if usages == nil {
				usages = []string{}
			}
			return writeJSON(cmd, usages)
		},
	}
	cmd.Flags().BoolVar(&ascend, "ascend", false, "also match descriptors inherited from parents")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var ascend bool
	cmd := &cobra.Command{
		Use:   "get DESCRIPTOR CLASS",
		Short: "Print the descriptor instances declared on a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, release, err := a.discovery(cmd.Context(), args[0], ascend)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			result, err := p.On(args[1]).Get(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&ascend, "ascend", false, "walk the embedded parent chain")
	return cmd
}

func newMethodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods DESCRIPTOR CLASS",
		Short: "Print the descriptor instances on each method of a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, release, err := a.discovery(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			result, err := p.On(args[1]).InMethods(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}
}

func newAllCmd(a *app) *cobra.Command {
	var ascend bool
	cmd := &cobra.Command{
		Use:   "all DESCRIPTOR [ROOT...]",
		Short: "Print class- and method-level instances for every class using a descriptor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, release, err := a.discovery(cmd.Context(), args[0], ascend)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			roots, err := a.roots(args[1:])
			if err != nil {
				return err
			}
			targets, err := p.All(cmd.Context(), roots...)
			if err != nil {
				return err
			}
			if targets == nil {
				targets = []types.DiscoveredTarget{}
			}
			return writeJSON(cmd, targets)
		},
	}
	cmd.Flags().BoolVar(&ascend, "ascend", false, "also match descriptors inherited from parents")
	return cmd
}

func newMetaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "meta DESCRIPTOR",
		Short: "Print where a descriptor type may be placed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, release, err := a.discovery(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			meta, err := p.Meta()
			if err != nil {
				return err
			}
			return writeJSON(cmd, meta)
		},
	}
}

// roots defaults the search roots to the scanned path. Roots are made
// absolute because they are part of the cache key.
func (a *app) roots(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{a.path}, nil
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		root, err := absPath(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, root)
	}
	return out, nil
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}
