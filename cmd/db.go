package cmd

import (
	"github.com/emrgen/lineage/internal/loader"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(exportCmd())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := openTree()
			if err != nil {
				return err
			}
			color.Green("tree %s is migrated", cfg.Tree)
			return nil
		},
	}

	return command
}

func loadCmd() *cobra.Command {
	var file string

	command := &cobra.Command{
		Use:     "load",
		Short:   "load a tree document",
		Long:    `load people, families and the objects they reference from a yaml tree document in one undoable step`,
		Example: "lineage load -f tree.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, []string{"file"}) {
				return nil
			}
			_, st, err := openTree()
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			tree, err := loader.Load(cmd.Context(), st, f)
			if err != nil {
				return err
			}
			logrus.Debugf("loaded %s", file)
			color.Green("loaded %d objects", len(tree.Objects()))
			return nil
		},
	}

	command.Flags().StringVarP(&file, "file", "f", "", "yaml tree document")

	return command
}

func exportCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "export",
		Short: "write the tree as a yaml document to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openTree()
			if err != nil {
				return err
			}

			tree, err := loader.Export(cmd.Context(), st)
			if err != nil {
				return err
			}
			return loader.Write(cmd.OutOrStdout(), tree)
		},
	}

	return command
}
