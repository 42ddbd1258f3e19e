package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/josephlewis42/sesh/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the current directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		log, err := newLogger(config.Default(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := config.Initialize(afero.NewOsFs(), cfgPath, log); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filepath.Join(cfgPath, config.ConfigurationName))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
