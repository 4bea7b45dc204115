package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stackvity/datescan/internal/cli"
	"github.com/stackvity/datescan/internal/cli/config"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// newRootCmd builds the datescan command with all flags registered.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datescan -f <path>[,<path>...]",
		Short: "Finds calendar dates in text files and reports the oldest and newest files.",
		Long: `datescan scans files and directory trees for dates written like
"March 1st, 1999" or "Dec. 25, 44 BC" and writes a summary sorted from the
oldest to the newest file.

Files are parsed in parallel by a fixed pool of workers. Binary files are
skipped, files without dates are left out of the report, and any I/O error
stops the scan.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")
	config.DefineFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfgFile, _ := cmd.Flags().GetString("config")
	profileName, _ := cmd.Flags().GetString("profile")
	cfg, logger, err := config.LoadAndValidate(cfgFile, profileName, cmd.Flags())
	if err != nil {
		return err
	}

	streams := cli.Streams{
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
		OutIsTerminal: isTerminal(cmd.OutOrStdout()),
		ErrIsTerminal: isTerminal(cmd.ErrOrStderr()),
	}
	return cli.Run(ctx, cfg, logger, streams)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute runs the root command. Cobra prints the error; the exit code is non-zero on failure.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
