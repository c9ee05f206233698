package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/goattr/internal/config"
	"github.com/dshills/goattr/internal/logging"
	"github.com/dshills/goattr/internal/parse"
	"github.com/dshills/goattr/internal/source"
	"github.com/dshills/goattr/internal/storage"
)

// app holds the state shared by every command of one invocation
type app struct {
	configPath string
	path       string
	noCache    bool

	cfg    *config.Config
	logger *log.Logger
	stderr io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "goattr",
		Short: "Discover descriptor directives in Go source",
		Long: `goattr finds //@Name{...} descriptor directives on Go types and methods.

A descriptor type is any type marked with //@Descriptor{Targets: "...", Repeatable: bool}.
Types and descriptor types are named by import path and type name:

  goattr usages example.com/app/attrs.Route
  goattr get --ascend example.com/app/attrs.Entity example.com/app/models.User
  goattr methods example.com/app/attrs.Route example.com/app/http.Handler
  goattr serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.path, "path", ".", "source directory to scan")
	root.PersistentFlags().BoolVar(&a.noCache, "no-cache", false, "bypass the discovery cache")

	root.AddCommand(
		newServeCmd(a),
		newUsagesCmd(a),
		newGetCmd(a),
		newMethodsCmd(a),
		newAllCmd(a),
		newMetaCmd(a),
		newPreloadCmd(a),
		newCacheCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the stderr logger
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.noCache {
		cfg.Cache.Backend = config.BackendNone
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	if a.path, err = absPath(a.path); err != nil {
		return err
	}

	a.cfg = cfg
	a.stderr = cmd.ErrOrStderr()
	a.logger = logging.New(a.stderr, "goattr", level)
	return nil
}

// scan builds an index over the --path directory
func (a *app) scan(ctx context.Context) (*source.Index, error) {
	idx := source.New(source.Config{
		Workers:       a.cfg.Scan.Workers,
		IncludeTests:  a.cfg.Scan.IncludeTests,
		IncludeVendor: a.cfg.Scan.IncludeVendor,
	}, a.logger.WithPrefix("source"))

	stats, err := idx.Scan(ctx, a.path)
	if err != nil {
		return nil, err
	}
	for _, msg := range stats.ErrorMessages {
		a.logger.Warn(msg)
	}
	return idx, nil
}

// discovery scans --path and returns a Parse bound to the index and the
// configured store; release closes the store
func (a *app) discovery(ctx context.Context, descriptor string, ascend bool) (parse.Parse, func() error, error) {
	idx, err := a.scan(ctx)
	if err != nil {
		return parse.Parse{}, nil, err
	}

	store, release, err := a.cfg.OpenStore()
	if err != nil {
		return parse.Parse{}, nil, err
	}

	p := parse.New(descriptor, idx, idx).WithLogger(a.logger.WithPrefix("parse"))
	if store != nil {
		p = p.WithCache(store)
	}
	if ascend {
		p = p.Ascend()
	}
	return p, release, nil
}

// maintainer opens the configured store for maintenance commands
func (a *app) maintainer() (storage.Maintainer, func() error, error) {
	store, release, err := a.cfg.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	m, ok := store.(storage.Maintainer)
	if !ok {
		_ = release()
		return nil, nil, fmt.Errorf("cache backend %q keeps nothing to maintain", a.cfg.Cache.Backend)
	}
	return m, release, nil
}

// writeJSON prints v as indented JSON on the command's stdout
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
