package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/josephlewis42/sesh/core/tracelog"
	"github.com/josephlewis42/sesh/core/ttylog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore trace logs of failed sessions and recordings.",
}

// traceLogDir is where sessions started in the current directory leave
// their trace logs.
func traceLogDir() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, cfg.LogDir), nil
}

var lsCommand = &cobra.Command{
	Use:   "ls",
	Short: "List trace logs left by failed sessions.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		dir, err := traceLogDir()
		if err != nil {
			return err
		}

		entries, err := tracelog.List(afero.NewOsFs(), dir)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "N\tSIZE\tPATH")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%d\t%s\n", e.Number, e.Size, e.Path)
		}
		return w.Flush()
	},
}

var catCommand = &cobra.Command{
	Use:   "cat N",
	Short: "Print a trace log.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("trace log number: %w", err)
		}
		dir, err := traceLogDir()
		if err != nil {
			return err
		}

		text, err := tracelog.Read(afero.NewOsFs(), dir, n)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), text)
		return err
	},
}

func openRecording(name string) (*ttylog.AsciicastLogSource, io.Closer, error) {
	if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != ttylog.AsciicastFileExt {
		return nil, nil, fmt.Errorf("%s: expected a .%s recording", name, ttylog.AsciicastFileExt)
	}
	fd, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return ttylog.NewAsciicastLogSource(fd), fd, nil
}

// playCommand replays a recording at the speed it was made
var playCommand = &cobra.Command{
	Use:   "play FILE.cast",
	Short: "Replay a recorded session in the terminal.",
	Long:  `Plays a session recorded with "run --record" back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		source, closer, err := openRecording(args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(source, sink)
	},
}

// showCommand prints a recording without pauses
var showCommand = &cobra.Command{
	Use:   "show FILE.cast",
	Short: "Print the full output of a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		source, closer, err := openRecording(args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		return ttylog.Replay(source, ttylog.NewClientOutput(cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(lsCommand)
	logsCmd.AddCommand(catCommand)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(showCommand)

	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
