package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezcool/markbook/core"
)

func (cli *commandLine) reportCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a teacher's pending records per class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if core.CleanString(id) == "" {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.report(cmd.Context(), id)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "the teacher's ID")
	return cmd
}

func (cli *commandLine) report(ctx context.Context, id string) error {
	counts, err := cli.marksSvc.ClassSummary(ctx, id)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(cli.out, "All Done: no pending records.")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLASS\tPENDING")
	total := 0
	for _, c := range counts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c.Class, c.Pending)
		total += c.Pending
	}
	_, _ = fmt.Fprintf(w, "TOTAL\t%d\n", total)
	return w.Flush()
}
