package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sable/internal/diagfmt"
	"sable/internal/names"
	"sable/internal/source"
	"sable/internal/treeio"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file.mpt>",
	Short: "Print a serialized class tree without rewriting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runDump(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	tbl := names.NewTable(source.NewInterner())
	fs := source.NewFileSet()
	decoded, err := treeio.Decode(bytes.NewReader(data), fs, tbl)
	if err != nil {
		return err
	}

	switch format {
	case "pretty":
		for _, e := range decoded.Body {
			diagfmt.FormatTreePretty(cmd.OutOrStdout(), e, tbl, fs)
		}
	case "json":
		for _, e := range decoded.Body {
			if err := diagfmt.FormatTreeJSON(cmd.OutOrStdout(), e, tbl, fs); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
