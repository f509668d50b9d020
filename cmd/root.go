package cmd

import (
	"os"

	"github.com/emrgen/lineage/internal/config"
	"github.com/emrgen/lineage/internal/service"
	"github.com/emrgen/lineage/internal/store"
	"github.com/spf13/cobra"
)

var treeFlag string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lineage",
	Short: "family tree merge tool",
	Example: `lineage load -f smiths.yaml
lineage merge person I0001 I0002
lineage merge family F0001 F0002 --father I0003
lineage undo
lineage history
lineage check
lineage resolve person I0002`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&treeFlag, "tree", "", "tree to work on (defaults to $TREE)")

	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

// openTree loads the configuration and opens the store of the selected tree.
func openTree() (*config.Config, store.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if treeFlag != "" {
		cfg.Tree = treeFlag
	}
	if err := cfg.SetupLogging(); err != nil {
		return nil, nil, err
	}

	st, err := config.OpenStore(cfg, cfg.Tree)
	if err != nil {
		return nil, nil, err
	}

	return cfg, st, nil
}

func openService() (*service.MergeService, store.Store, error) {
	cfg, st, err := openTree()
	if err != nil {
		return nil, nil, err
	}

	return service.NewMergeService(st, config.NewRedirects(cfg, cfg.Tree)), st, nil
}
