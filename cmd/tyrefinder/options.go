package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/matst80/tyre-finder/pkg/binding"
	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/facet"
	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options [query]",
	Short: "Print what a binding shows for a query string",
	Long: `Loads the catalog and applies the query to one binding, for example

  tyrefinder options --path listing.html "category=Car%2FSUV&size=16"
  tyrefinder options --binding finder "category=truck&rim=R22.5"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := loadStore(ctx)
		if err != nil && !errors.Is(err, catalog.ErrNoProducts) {
			return err
		}
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		name, _ := cmd.Flags().GetString("binding")
		result, err := runBinding(ctx, binding.NewEngines(store.Get()), name, query)
		if err != nil {
			return err
		}
		enc := sonic.ConfigDefault.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

type finderResult struct {
	binding.FinderView
	Location string `json:"location,omitempty"`
}

// applyParams changes every field named in params, in field order.
func applyParams(e *facet.Engine, params map[string]string, change func(dimension, value string) error) error {
	for _, field := range e.Fields() {
		value, ok := params[field.Key()]
		if !ok {
			value, ok = params[field.Id]
		}
		if !ok {
			continue
		}
		if err := change(field.Id, value); err != nil {
			return fmt.Errorf("%s=%s: %w", field.Key(), value, err)
		}
	}
	return nil
}

func runBinding(ctx context.Context, e *binding.Engines, name, query string) (any, error) {
	params := binding.ParseQuery(query)
	switch name {
	case "", "listing":
		return binding.NewListing(e).Apply(ctx, query), nil
	case "finder":
		f := binding.NewFinder(e)
		err := applyParams(e.Finder, params, func(dimension, value string) error {
			_, err := f.Change(ctx, dimension, value)
			return err
		})
		if err != nil {
			return nil, err
		}
		result := finderResult{FinderView: f.View()}
		if location, err := f.Search(); err == nil {
			result.Location = location
		}
		return result, nil
	case "sidebar":
		s := binding.NewSidebar(ctx, e)
		err := applyParams(e.Sidebar, params, func(dimension, value string) error {
			_, err := s.Change(ctx, dimension, value)
			return err
		})
		return s.View(), err
	case "table":
		t := binding.NewTable(ctx, e)
		err := applyParams(e.Table, params, func(dimension, value string) error {
			_, err := t.Change(ctx, dimension, value)
			return err
		})
		return t.View(), err
	}
	return nil, fmt.Errorf("unknown binding %q, use listing, finder, sidebar or table", name)
}

func init() {
	optionsCmd.Flags().StringP("binding", "b", "listing", "Binding to apply the query to: listing, finder, sidebar or table")
}
