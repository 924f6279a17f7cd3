package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/planetreboot/internal/core/storage"
	"github.com/zeusync/planetreboot/internal/injector"
)

func newInspectCmd(load configLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the stored simulation state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, cleanup, err := injector.InitializeStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if doc == nil {
				_, err = fmt.Fprintf(out, "no stored state under %q\n", store.Key())
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			return printSummary(out, store.Key(), doc)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the whole document as JSON")
	return cmd
}

func printSummary(w io.Writer, key string, doc *storage.Document) error {
	counts := map[int]int{}
	for _, item := range doc.Trash {
		counts[item.TypeIndex()]++
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "key\t%s\n", key)
	fmt.Fprintf(tw, "health\t%.1f\n", doc.Health)
	fmt.Fprintf(tw, "years left\t%.1f\n", doc.YearsLeft)
	fmt.Fprintf(tw, "trash count\t%d\n", doc.TrashCount)
	fmt.Fprintf(tw, "packed items\t%d\n", len(doc.Trash))
	for _, t := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(tw, "  type %d\t%d\n", t, counts[t])
	}
	if doc.Skipped > 0 {
		fmt.Fprintf(tw, "skipped entries\t%d\n", doc.Skipped)
	}
	fmt.Fprintf(tw, "auto-rotate\t%t\n", doc.AutoRotateEnabled)
	return tw.Flush()
}

func newResetCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the stored state with a fresh planet",
		Long: `Write a fresh planet to storage: default health and years left and no
litter. The stored auto-rotate preference is kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, cleanup, err := injector.InitializeStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			doc := storage.DefaultDocument()
			if prev, err := store.Load(cmd.Context()); err != nil {
				return err
			} else if prev != nil {
				doc.AutoRotateEnabled = prev.AutoRotateEnabled
			}
			if _, err = store.Save(cmd.Context(), doc); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reset %q\n", store.Key())
			return err
		},
	}
}
