package cmd

import (
	"fmt"

	"github.com/josephlewis42/sesh/core/script"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands scripts can use.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, b := range script.ListBuiltins() {
			fmt.Fprintln(cmd.OutOrStdout(), b.Usage)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
