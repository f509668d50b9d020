package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/emrgen/lineage/internal/merge"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/service"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "merge two objects of a tree; the first handle survives",
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	mergeCmd.AddCommand(mergePersonCmd())
	mergeCmd.AddCommand(mergeFamilyCmd())
	for _, kind := range model.AllKinds {
		if kind == model.KindPerson || kind == model.KindFamily {
			continue
		}
		mergeCmd.AddCommand(mergeObjectCmd(kind))
	}

	rootCmd.AddCommand(resolveCmd())
}

func mergePersonCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "person <phoenix> <titanic>",
		Short:   "merge two people",
		Long:    `merge two people, merging their duplicate families when that is unambiguous`,
		Example: "lineage merge person I0001 I0002",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService()
			if err != nil {
				return err
			}

			res, err := svc.MergePeople(cmd.Context(), args[0], args[1])
			if err != nil {
				return mergeFailed(err)
			}
			printResult(res)
			if !res.Complete {
				color.Yellow("duplicate families were left in place, merge them with 'lineage merge family'")
			}
			return nil
		},
	}

	return command
}

func mergeFamilyCmd() *cobra.Command {
	var father, mother string

	command := &cobra.Command{
		Use:     "family <phoenix> <titanic>",
		Short:   "merge two families and their parents",
		Example: "lineage merge family F0001 F0002 --father I0003",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService()
			if err != nil {
				return err
			}

			var opts []merge.FamilyOption
			if father != "" {
				opts = append(opts, merge.WithFather(father))
			}
			if mother != "" {
				opts = append(opts, merge.WithMother(mother))
			}

			res, err := svc.MergeFamilies(cmd.Context(), args[0], args[1], opts...)
			if err != nil {
				return mergeFailed(err)
			}
			printResult(res)
			return nil
		},
	}

	command.Flags().StringVar(&father, "father", "", "handle of the father to keep")
	command.Flags().StringVar(&mother, "mother", "", "handle of the mother to keep")

	return command
}

func mergeObjectCmd(kind model.Kind) *cobra.Command {
	name := strings.ToLower(string(kind))
	command := &cobra.Command{
		Use:   name + " <phoenix> <titanic>",
		Short: "merge two " + name + " objects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService()
			if err != nil {
				return err
			}

			res, err := svc.MergeObjects(cmd.Context(), kind, args[0], args[1])
			if err != nil {
				return mergeFailed(err)
			}
			printResult(res)
			return nil
		},
	}

	return command
}

func resolveCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "resolve <kind> <handle>",
		Short:   "print the live handle of an object that may have been merged away",
		Example: "lineage resolve person I0002",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return err
			}
			svc, _, err := openService()
			if err != nil {
				return err
			}

			handle, err := svc.Resolve(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), handle)
			return nil
		},
	}

	return command
}

func mergeFailed(err error) error {
	if merge.IsMergeError(err) {
		color.Red("cannot merge: %v", err)
	}
	return err
}

func printResult(res *service.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Kept", "Merged", "Complete"})
	table.Append([]string{string(res.Kind), res.Phoenix, res.Titanic, fmt.Sprint(res.Complete)})
	table.Render()
}
