package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/sesh/core/script"
	"github.com/josephlewis42/sesh/core/session"
	"github.com/josephlewis42/sesh/core/vos"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var playgroundErrExit bool

// prompt shows the session directory relative to $HOME and the last exit
// code if it wasn't zero.
func prompt(s *session.Session) string {
	pwd := s.Pwd()
	if home := s.Getenv("HOME"); home != "" {
		if rel, err := filepath.Rel(home, pwd); err == nil && !strings.HasPrefix(rel, "..") {
			pwd = filepath.Join("~", rel)
		}
	}

	var status string
	if code := s.LastExitCode(); code != 0 {
		status = color.RedString("[%d] ", code)
	}
	return fmt.Sprintf("%ssesh:%s$ ", status, color.CyanString(pwd))
}

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, b := range script.ListBuiltins() {
		items = append(items, readline.PcItem(b.Name))
	}
	return readline.NewPrefixCompleter(items...)
}

// playgroundCmd runs an interactive session
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run script lines interactively.",
	Long: `Starts an interactive session in the current directory. Each line is
run as a script line; failures are printed and the session carries on.
Use "exit" or Ctrl-D to leave.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.FailOnNonzeroExit = playgroundErrExit

		log, err := newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer log.Sync()

		rl, err := readline.NewEx(&readline.Config{
			Prompt:       "sesh$ ",
			AutoComplete: completer(),
			Stdin:        readline.NewCancelableStdin(cmd.InOrStdin()),
			Stdout:       cmd.OutOrStdout(),
			Stderr:       cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		s, err := session.NewFromHost(cfg,
			session.WithIO(vos.NewVIOAdapter(nil, rl.Stdout(), rl.Stderr())),
			session.WithLogger(log))
		if err != nil {
			return err
		}
		interpreter := script.New(s)

		for {
			rl.SetPrompt(prompt(s))
			line, err := rl.Readline()

			switch {
			case err == io.EOF:
				return nil // Input closed, quit.

			case err == readline.ErrInterrupt:
				continue

			case err != nil:
				log.Error("reading line", zap.Error(err))
				return err
			}

			outcome := session.Classify(interpreter.RunLine(cmd.Context(), line))
			switch outcome.Kind {
			case session.OutcomeSuccess:
			case session.OutcomeExit, session.OutcomeQuietExit:
				return exitWith(cmd, outcome.Code)
			case session.OutcomeFailure:
				color.New(color.FgRed).Fprintln(rl.Stderr(), outcome.Err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
	playgroundCmd.Flags().BoolVarP(&playgroundErrExit, "errexit", "e", false, "Treat a non-zero exit as a failure.")
}

