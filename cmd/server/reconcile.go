package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var generateAfterReconcile bool
var generateModel string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Backfill missing references from watch listings",
	Long: `Scan every watch with a model reference and create an empty reference
record for each reference name that has none. Safe to run repeatedly.

With --generate, descriptions are then generated for every reference
that still has none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out := map[string]any{}
		result, err := a.reconcile.Reconcile(ctx)
		if err != nil {
			return err
		}
		out["reconcile"] = result

		if generateAfterReconcile {
			batch, err := a.generation.GenerateAll(ctx, generateModel)
			if batch != nil {
				out["generate"] = batch
			}
			if err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&generateAfterReconcile, "generate", false, "generate descriptions for references without one")
	reconcileCmd.Flags().StringVar(&generateModel, "model", "", "model to use with --generate (default: llm.default_model)")
	rootCmd.AddCommand(reconcileCmd)
}
