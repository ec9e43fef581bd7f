package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/FuelLabs/sway-sub019/internal/diagfmt"
	"github.com/FuelLabs/sway-sub019/internal/driver"
	"github.com/FuelLabs/sway-sub019/internal/project"
	"github.com/FuelLabs/sway-sub019/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [directory]",
	Short: "Type-check the project",
	Long:  `Load the project's pre-parsed trees, resolve names, infer types, and validate the program kind. Diagnostics go to stdout; the exit status is non-zero when errors were found.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().String("paths", "relative", "path display mode (auto|absolute|relative|basename)")
	checkCmd.Flags().Int("jobs", 0, "max parallel input loaders (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Int("context", 0, "source lines shown around each diagnostic")
	checkCmd.Flags().Bool("disk-cache", false, "reuse cached results for unchanged inputs")
	checkCmd.Flags().Bool("progress", false, "show interactive progress (TTY only)")
	checkCmd.Flags().Int("mono-max-depth", 0, "max monomorphization recursion depth (0=default)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, manifest, err := pipelineOptions(cmd, args)
	if err != nil {
		return err
	}

	res, err := runPipeline(cmd, opts)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	pathMode, _ := cmd.Flags().GetString("paths")
	withNotes, _ := cmd.Flags().GetBool("with-notes")
	contextLines, _ := cmd.Flags().GetInt("context")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     colorEnabled(cmd),
			Context:   contextLines,
			PathMode:  diagfmt.ParsePathMode(pathMode),
			ShowNotes: withNotes,
		})
	case "short":
		diagfmt.Short(out, res.Bag, res.FileSet, diagfmt.ParsePathMode(pathMode))
	case "json":
		err := diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.ParsePathMode(pathMode),
			IncludeNotes:     withNotes,
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json, or short)", format)
	}

	if !quiet && format != "json" {
		if res.FromCache {
			fmt.Fprintf(out, "%s: up to date (%d instances, cached)\n", manifest.Config.Package.Name, res.Instances)
		} else {
			fmt.Fprintf(out, "%s: %d module(s), %d instance(s)\n", manifest.Config.Package.Name, len(res.Modules), res.Instances)
		}
	}

	if n := res.Bag.ErrorCount(); n > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("check failed with %d error(s)", n)
	}
	return nil
}

// pipelineOptions locates the manifest and folds CLI flags over it.
func pipelineOptions(cmd *cobra.Command, args []string) (driver.Options, *project.Manifest, error) {
	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}
	manifest, ok, err := project.Load(startDir)
	if err != nil {
		return driver.Options{}, nil, err
	}
	if !ok {
		return driver.Options{}, nil, fmt.Errorf("no %s found above %s", project.ManifestName, startDir)
	}

	opts := driver.FromManifest(manifest)
	if v, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err == nil && v > 0 {
		opts.MaxDiagnostics = v
	}
	if v, err := cmd.Flags().GetInt("jobs"); err == nil && v > 0 {
		opts.Jobs = v
	}
	if v, err := cmd.Flags().GetInt("mono-max-depth"); err == nil && v > 0 {
		opts.MonoMaxDepth = v
	}
	if useCache, err := cmd.Flags().GetBool("disk-cache"); err == nil && useCache {
		cache, err := driver.OpenDiskCache("swayc")
		if err != nil {
			return driver.Options{}, nil, fmt.Errorf("disk cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, manifest, nil
}

// runPipeline executes the driver, with the interactive progress view
// when requested and the output is a terminal.
func runPipeline(cmd *cobra.Command, opts driver.Options) (*driver.Result, error) {
	showProgress, _ := cmd.Flags().GetBool("progress")
	if !showProgress || !isTerminal(os.Stdout) {
		return driver.Run(cmd.Context(), opts)
	}

	events := make(chan driver.Event, 16)
	opts.Progress = events

	type outcome struct {
		res *driver.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := driver.Run(cmd.Context(), opts)
		done <- outcome{res, err}
	}()

	model := ui.NewProgressModel("checking", opts.TreePaths, events)
	if _, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run(); err != nil {
		// The pipeline finishes regardless; drain it before failing.
		<-done
		return nil, err
	}
	out := <-done
	return out.res, out.err
}
