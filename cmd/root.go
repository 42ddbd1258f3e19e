package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/josephlewis42/sesh/core/config"
	"github.com/josephlewis42/sesh/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	return config.LoadOrDefault(afero.NewOsFs(), cfgPath)
}

func newLogger(cfg *config.Configuration, w io.Writer) (*zap.Logger, error) {
	log, err := logger.New(cfg, w)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return log, nil
}

// exitCodeError makes the process exit with a status other than 1 without
// printing anything more.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitWith returns nil for a zero status and an exitCodeError otherwise.
func exitWith(cmd *cobra.Command, code int) error {
	if code == 0 {
		return nil
	}
	cmd.SilenceErrors = true
	return &exitCodeError{code: code}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sesh",
	Short: "Shell-like scripting without a shell",
	Long: `Runs scripts of commands and file operations in a session that tracks
its own directory, environment and policy, echoing and tracing what it does.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
