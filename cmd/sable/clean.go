package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sable/internal/treeio"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the on-disk tree cache",
	Long:  "Remove cached rewritten trees, forcing the next run to rewrite everything.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cache, err := treeio.OpenCache("sable")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cache dropped")
	return nil
}
