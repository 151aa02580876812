package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssotops/depot-sync/depot"
	"github.com/ssotops/depot-sync/lib"
	"github.com/ssotops/depot-sync/logger"
)

type syncFlags struct {
	configPath  string
	source      string
	include     string
	target      string
	branch      string
	path        string
	push        bool
	descriptor  string
	concurrency int
	output      string
	logLevel    string
	logDir      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "depot-sync",
		Short:         "Build a template depot from release assets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newSyncCmd() *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Scan releases and publish the depot to the target branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", defaultConfigPath, "Path to the config file")
	f.StringVar(&flags.source, "source", "", "Source repository (owner/repo)")
	f.StringVar(&flags.include, "include", "", "Include strategy: all, stable-only or prerelease-only")
	f.StringVar(&flags.target, "target", "", "Target repository (owner/repo), defaults to the source")
	f.StringVar(&flags.branch, "branch", "", "Target branch")
	f.StringVar(&flags.path, "path", "", "Depot path on the target branch")
	f.BoolVar(&flags.push, "push", false, "Publish the depot instead of printing it")
	f.StringVar(&flags.descriptor, "descriptor", "", "Descriptor path inside each archive")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Maximum parallel asset downloads, 0 for no limit")
	f.StringVarP(&flags.output, "output", "o", "", "Write the depot to this file when not pushing")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&flags.logDir, "log-dir", "", "Directory for a log file")
	return cmd
}

// applyFlags overrides config values with the flags set on the command line.
func applyFlags(cmd *cobra.Command, config *Config, flags *syncFlags) {
	changed := cmd.Flags().Changed
	if changed("source") {
		config.Source.Repository = flags.source
	}
	if changed("include") {
		config.Source.Include = flags.include
	}
	if changed("target") {
		config.Target.Repository = flags.target
	}
	if changed("branch") {
		config.Target.Branch = flags.branch
	}
	if changed("path") {
		config.Target.Path = flags.path
	}
	if changed("push") {
		config.Sync.Push = flags.push
	}
	if changed("descriptor") {
		config.Sync.Descriptor = flags.descriptor
	}
	if changed("concurrency") {
		config.Sync.MaxConcurrentFetches = flags.concurrency
	}
	if changed("output") {
		config.Sync.Output = flags.output
	}
	if changed("log-level") {
		config.Log.Level = flags.logLevel
	}
	if changed("log-dir") {
		config.Log.Dir = flags.logDir
	}
}

func runSync(cmd *cobra.Command, flags *syncFlags) error {
	config, err := loadConfig(flags.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, config, flags)

	opts, err := config.syncOptions()
	if err != nil {
		return err
	}

	runLogger, closeLog, err := logger.New(logger.Options{Level: config.Log.Level, Dir: config.Log.Dir})
	if err != nil {
		return &ConfigError{Field: "log", Message: "failed to initialise logger", Cause: err}
	}
	defer closeLog.Close()

	opts.Output = cmd.OutOrStdout()
	if !opts.Push && config.Sync.Output != "" {
		out, err := os.Create(config.Sync.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()
		opts.Output = out
	}

	ctx := cmd.Context()
	provider, err := lib.GetSCMProvider(ctx)
	if err != nil {
		return err
	}

	result, err := depot.NewSyncer(provider, runLogger, opts).Run(ctx)
	if result != nil {
		printSyncSummary(cmd.ErrOrStderr(), opts, result)
	}
	return err
}

func newValidateCmd() *cobra.Command {
	var descriptor string

	cmd := &cobra.Command{
		Use:   "validate <archive.zip>...",
		Short: "Check template archives and print the depot entries they produce",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, failures := validateArchives(args, descriptor, cmd.ErrOrStderr())

			data, err := entries.Encode()
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d archives are not valid templates", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&descriptor, "descriptor", depot.DefaultDescriptorPath, "Descriptor path inside each archive")
	return cmd
}

func validateArchives(paths []string, descriptor string, errOut io.Writer) (depot.Depot, int) {
	entries := depot.Depot{}
	failures := 0

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", path, err)
			failures++
			continue
		}

		location := path
		if abs, err := filepath.Abs(path); err == nil {
			location = "file://" + filepath.ToSlash(abs)
		}

		entry, err := depot.ConvertArchive(location, data, descriptor)
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", path, err)
			failures++
			continue
		}
		entries = append(entries, entry)
	}

	return entries, failures
}
