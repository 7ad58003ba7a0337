package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sable/internal/diagfmt"
	"sable/internal/driver"
	"sable/internal/project"
	"sable/internal/treeio"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [flags] <file.mpt|directory>",
	Short: "Desugar property declarations in serialized class trees",
	Long: `Rewrite expands prop/const declarations in every class of the given
tree files into explicit accessors, signatures and struct constructors`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().String("format", "none", "tree output format (none|pretty|json)")
	rewriteCmd.Flags().String("output", "", "directory for rewritten tree files")
	rewriteCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	rewriteCmd.Flags().Bool("autogen", false, "skip rewriting (generated input already carries expansions)")
	rewriteCmd.Flags().Bool("no-cache", false, "bypass the on-disk tree cache")
}

// rewriteOptions собирает Options из манифеста и флагов.
// Флаги, заданные явно, перекрывают sable.toml.
func rewriteOptions(cmd *cobra.Command, target string) (driver.Options, error) {
	cfg := project.DefaultRewriteConfig()
	if manifest, ok, err := project.Load(filepath.Dir(target)); err != nil {
		return driver.Options{}, err
	} else if ok {
		cfg = manifest.Config.Rewrite
	}

	opts := driver.Options{
		Jobs:           cfg.Jobs,
		MaxDiagnostics: cfg.MaxDiagnostics,
		Autogen:        cfg.Autogen,
		Extensions:     cfg.Extensions,
	}

	if cmd.Flags().Changed("jobs") {
		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return driver.Options{}, err
		}
		opts.Jobs = jobs
	}
	if cmd.Flags().Changed("autogen") {
		autogen, err := cmd.Flags().GetBool("autogen")
		if err != nil {
			return driver.Options{}, err
		}
		opts.Autogen = autogen
	}
	if cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		if err != nil {
			return driver.Options{}, err
		}
		opts.MaxDiagnostics = maxDiag
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return driver.Options{}, err
	}
	if !noCache {
		cache, err := treeio.OpenCache("sable")
		if err != nil {
			// без кеша работать можно, предупреждение достаточно
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache unavailable: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}
	return opts, nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	target := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	opts, err := rewriteOptions(cmd, target)
	if err != nil {
		return err
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	var results []*driver.RewriteResult
	if st.IsDir() {
		results, err = driver.RewriteDir(cmd.Context(), target, opts)
	} else {
		var res *driver.RewriteResult
		res, err = driver.RewriteFile(cmd.Context(), target, opts)
		if res != nil {
			results = []*driver.RewriteResult{res}
		}
	}
	if err != nil {
		return fmt.Errorf("rewrite failed: %w", err)
	}

	colorOn, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	prettyOpts := diagfmt.PrettyOpts{
		Color:     colorOn,
		Context:   1,
		ShowNotes: true,
		ShowFixes: true,
	}

	failed := false
	for _, r := range results {
		if r.Bag.Len() > 0 {
			r.Bag.Sort()
			diagfmt.Pretty(os.Stderr, r.Bag, r.Files, prettyOpts)
		}
		if r.Bag.HasErrors() {
			failed = true
		}
	}

	for _, r := range results {
		if !quiet && len(results) > 1 && format != "none" {
			fmt.Fprintf(cmd.OutOrStdout(), "== %s\n", r.Path)
		}
		switch format {
		case "none":
		case "pretty":
			for _, e := range r.Body {
				diagfmt.FormatTreePretty(cmd.OutOrStdout(), e, r.Names, r.Files)
			}
		case "json":
			for _, e := range r.Body {
				if err := diagfmt.FormatTreeJSON(cmd.OutOrStdout(), e, r.Names, r.Files); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
	}

	if outDir != "" {
		if err := writeRewritten(outDir, results); err != nil {
			return err
		}
	}

	if failed {
		return fmt.Errorf("rewrite finished with errors")
	}
	return nil
}

// writeRewritten кладёт переписанные деревья в outDir, по файлу на вход.
func writeRewritten(outDir string, results []*driver.RewriteResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, r := range results {
		f := r.Files.Get(r.File)
		var buf bytes.Buffer
		if err := treeio.Encode(&buf, f.Path, f.Content, r.Body, r.Names); err != nil {
			return fmt.Errorf("encode %s: %w", r.Path, err)
		}
		out := filepath.Join(outDir, filepath.Base(r.Path))
		if err := os.WriteFile(out, buf.Bytes(), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}
	return nil
}
