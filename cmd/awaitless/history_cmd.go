package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"

	"github.com/t0technology/awaitless/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded cells",
		Args:  cobra.NoArgs,
		RunE:  historyHandler,
	}
	f := cmd.Flags()
	f.IntP("limit", "n", 20, "number of cells to show")
	f.String("session", "", "show every cell of one session")
	f.Bool("rewritten", false, "show cells as they ran after rewriting")
	return cmd
}

func historyHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.NoHistory {
		return fmt.Errorf("history is disabled")
	}
	store, err := cfg.openHistory(cfg.logger())
	if err != nil {
		return err
	}
	defer store.Close()

	flags := cmd.Flags()
	var cells []history.Cell
	if id, _ := flags.GetString("session"); id != "" {
		session, err := uuid.FromString(id)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", id, err)
		}
		if cells, err = store.Cells(contextOf(cmd), session); err != nil {
			return err
		}
	} else {
		n, _ := flags.GetInt("limit")
		if cells, err = store.Recent(contextOf(cmd), n); err != nil {
			return err
		}
	}
	if rewritten, _ := flags.GetBool("rewritten"); rewritten {
		for i := range cells {
			cells[i].Source = cells[i].Rewritten
		}
	}
	printCells(cmd.OutOrStdout(), cells)
	return nil
}

func printCells(w io.Writer, cells []history.Cell) {
	for _, cell := range cells {
		prefix := fmt.Sprintf("%s %3d: ", cell.Session.String()[:8], cell.Line)
		pad := strings.Repeat(" ", len(prefix))
		for i, line := range strings.Split(cell.Source, "\n") {
			if i == 0 {
				fmt.Fprintf(w, "%s%s\n", dimColor(prefix), line)
			} else {
				fmt.Fprintf(w, "%s%s\n", pad, line)
			}
		}
	}
}
