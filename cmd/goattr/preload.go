package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/goattr/internal/loader"
	"github.com/dshills/goattr/internal/preload"
	"github.com/dshills/goattr/internal/source"
)

func newPreloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preload [CLASS...]",
		Short: "Run the configured namespace loaders and print what they found",
		Long: `Runs the loaders declared under "preload" in the config file over every
class of their namespace. With CLASS arguments only those classes are printed.

  preload:
    - namespace: example.com/app/models
      rules:
        - descriptor: example.com/app/attrs.Entity
          mode: single        # single | repeatable | methods
          ascend: true
          transform: value.fields.Table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Preload) == 0 {
				return fmt.Errorf("no preload namespaces configured")
			}

			idx, err := a.scan(cmd.Context())
			if err != nil {
				return err
			}

			cache := preload.New(idx, a.logger.WithPrefix("preload"))
			namespaces, err := a.loaders(idx)
			if err != nil {
				return err
			}
			cache.AddNamespace(namespaces)
			if err := cache.Load(cmd.Context()); err != nil {
				return err
			}

			classes := args
			if len(classes) == 0 {
				classes = idx.Classes()
			}
			out := make(map[string]map[string]any)
			for _, class := range classes {
				if data, ok := cache.Class(class); ok && len(data) > 0 {
					out[class] = data
				}
			}
			return writeJSON(cmd, out)
		},
	}
}

// loaders builds one loader per configured namespace
func (a *app) loaders(idx *source.Index) (map[string]*loader.Loader, error) {
	out := make(map[string]*loader.Loader, len(a.cfg.Preload))
	for _, ns := range a.cfg.Preload {
		l := loader.New(idx)
		for _, rule := range ns.Rules {
			mode, err := loader.ParseLoadMode(rule.Mode)
			if err != nil {
				return nil, err
			}
			var transform loader.Transform
			if rule.Transform != "" {
				transform, err = loader.ExprTransform(rule.Transform)
				if err != nil {
					return nil, fmt.Errorf("%s %s: %w", ns.Namespace, rule.Descriptor, err)
				}
			}
			l.Add(rule.Descriptor, mode, rule.Ascend, transform)
		}
		out[ns.Namespace] = l
	}
	return out, nil
}
