package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/t0technology/awaitless"
	"github.com/t0technology/awaitless/shell"
)

func newDoctestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctest FILE...",
		Short: "Run session transcripts and compare their output",
		Long: `Run session transcripts. Lines starting with ">>> " are cells, "... "
lines continue them, and the lines that follow are the expected output.
Each file runs in a fresh shell with the awaitless extension registered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: doctestHandler,
	}
}

func doctestHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed := 0
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		failures, err := shell.RunTranscript(contextOf(cmd), string(data),
			shell.WithLogger(cfg.logger()),
			shell.WithAutoAwait(cfg.AutoAwait),
			shell.WithExtensions(awaitless.New()),
		)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		for _, f := range failures {
			fmt.Fprintf(out, "%s %s:%s\n\n", red("FAIL"), file, f.Error())
		}
		if len(failures) == 0 {
			fmt.Fprintf(out, "ok   %s\n", file)
		}
		failed += len(failures)
	}
	if failed > 0 {
		return fmt.Errorf("%d example(s) failed", failed)
	}
	return nil
}
