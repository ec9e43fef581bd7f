package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FuelLabs/sway-sub019/internal/diagfmt"
	"github.com/FuelLabs/sway-sub019/internal/mono"
)

var monoCmd = &cobra.Command{
	Use:   "mono [directory]",
	Short: "Print the monomorphization schedule",
	Long:  `Check the project and print the generic instance schedule as a stable text manifest: one entry per instance in demand order, with its use sites and the instances it requires.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMono,
}

func init() {
	monoCmd.Flags().String("paths", "relative", "path display mode (auto|absolute|relative|basename)")
	monoCmd.Flags().Bool("mangle", false, "include the mangled name of each instance")
	monoCmd.Flags().Int("jobs", 0, "max parallel input loaders (0=auto)")
	monoCmd.Flags().Bool("disk-cache", false, "reuse cached results for unchanged inputs")
	monoCmd.Flags().Int("mono-max-depth", 0, "max monomorphization recursion depth (0=default)")
}

func runMono(cmd *cobra.Command, args []string) error {
	opts, manifest, err := pipelineOptions(cmd, args)
	if err != nil {
		return err
	}

	res, err := runPipeline(cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pathMode, _ := cmd.Flags().GetString("paths")
	if n := res.Bag.ErrorCount(); n > 0 {
		// No schedule without a clean check; show what went wrong.
		diagfmt.Short(out, res.Bag, res.FileSet, diagfmt.ParsePathMode(pathMode))
		cmd.SilenceUsage = true
		return fmt.Errorf("%s: check failed with %d error(s), no schedule produced", manifest.Config.Package.Name, n)
	}

	mangled, _ := cmd.Flags().GetBool("mangle")
	if err := mono.Dump(out, res.Schedule, res.Sema, res.FileSet, mono.DumpOptions{
		PathMode: pathMode,
		Mangled:  mangled,
	}); err != nil {
		return err
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(out, "%s: %d instance(s)\n", manifest.Config.Package.Name, res.Instances)
	}
	return nil
}
