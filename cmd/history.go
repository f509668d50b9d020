package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/emrgen/lineage/internal/check"
	"github.com/emrgen/lineage/internal/server"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(undoCmd())
	rootCmd.AddCommand(redoCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(watchCmd())
}

func undoCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "undo",
		Short: "revert the latest change",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService()
			if err != nil {
				return err
			}

			txn, err := svc.Undo(cmd.Context())
			if err != nil {
				return err
			}
			color.Green("undid %q", txn.Label)
			return nil
		},
	}

	return command
}

func redoCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "redo",
		Short: "re-apply the latest undone change",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService()
			if err != nil {
				return err
			}

			txn, err := svc.Redo(cmd.Context())
			if err != nil {
				return err
			}
			color.Green("redid %q", txn.Label)
			return nil
		},
	}

	return command
}

func historyCmd() *cobra.Command {
	var limit int

	command := &cobra.Command{
		Use:   "history",
		Short: "list the undoable changes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openTree()
			if err != nil {
				return err
			}

			txns, err := st.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Change", "Time", "Undone"})
			for _, txn := range txns {
				table.Append([]string{
					strconv.FormatUint(txn.ID, 10),
					txn.Label,
					txn.CreatedAt.Format(time.DateTime),
					strconv.FormatBool(txn.Undone),
				})
			}
			table.Render()
			return nil
		},
	}

	command.Flags().IntVarP(&limit, "limit", "n", 20, "number of changes to list, 0 for all")

	return command
}

func checkCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "check",
		Short: "check the references of the tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openTree()
			if err != nil {
				return err
			}

			report, err := check.NewChecker(st).Run(cmd.Context())
			if err != nil {
				return err
			}
			if report.OK() {
				color.Green("%d objects, no problems", report.Objects)
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Problem", "Source", "Target"})
			for _, p := range report.Problems {
				table.Append([]string{string(p.Kind), p.Source.String(), p.Target.String()})
			}
			table.Render()
			color.Red("%d problems in %d objects", len(report.Problems), report.Objects)
			return nil
		},
	}

	return command
}

func watchCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "watch",
		Short: "run the scheduled integrity check and history cleaner until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openTree()
			if err != nil {
				return err
			}

			return server.Start(cfg, st)
		},
	}

	return command
}
