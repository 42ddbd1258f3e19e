package cmd

import (
	"bytes"
	"context"
	"os"
	"strconv"

	"github.com/josephlewis42/sesh/core/config"
	"github.com/josephlewis42/sesh/core/script"
	"github.com/josephlewis42/sesh/core/session"
	"github.com/josephlewis42/sesh/core/ttylog"
	"github.com/josephlewis42/sesh/core/vos"
	"github.com/spf13/cobra"
)

var runFlags struct {
	echoCommands bool
	noErrExit    bool
	noEscape     bool
	quiet        bool
	record       string
}

// applyRunFlags overrides the configured session policy with flags given on
// the command line.
func applyRunFlags(cmd *cobra.Command, cfg *config.Configuration) {
	flags := cmd.Flags()
	if flags.Changed("echo-commands") {
		cfg.EchoCommands = runFlags.echoCommands
	}
	if flags.Changed("no-errexit") {
		cfg.FailOnNonzeroExit = !runFlags.noErrExit
	}
	if flags.Changed("no-escape") {
		cfg.EscapeArgs = !runFlags.noEscape
	}
	if flags.Changed("quiet") {
		cfg.EchoStdout = !runFlags.quiet
	}
}

var runCmd = &cobra.Command{
	Use:   "run SCRIPT [ARGS...]",
	Short: "Run a script.",
	Long: `Runs SCRIPT one line at a time in a new session that starts in the
current directory with the current environment. $0 is the script's path and
$1, $2... are ARGS. Run "sesh builtins" to see what a script can do besides
running commands.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)

		log, err := newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer log.Sync()

		name := args[0]
		body, err := os.ReadFile(name)
		if err != nil {
			return err
		}

		var vio vos.VIO = vos.NewVIOAdapter(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if runFlags.record != "" {
			f, err := os.Create(runFlags.record)
			if err != nil {
				return err
			}
			defer f.Close()
			header := ttylog.DefaultHeader("sesh run "+name, cfg.Shell)
			vio = ttylog.NewRecorder(vio, ttylog.NewAsciicastLogSink(f, header), log)
		}

		code := session.Main(cmd.Context(), cfg, func(ctx context.Context, s *session.Session) error {
			for i, arg := range args {
				if err := s.Setenv(strconv.Itoa(i), arg); err != nil {
					return err
				}
			}
			return script.New(s).RunScript(ctx, name, bytes.NewReader(body))
		}, session.WithIO(vio), session.WithLogger(log))

		return exitWith(cmd, code)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.SetInterspersed(false)
	flags.BoolVarP(&runFlags.echoCommands, "echo-commands", "x", false, "Print each command before running it.")
	flags.BoolVar(&runFlags.noErrExit, "no-errexit", false, "Keep going when a command exits non-zero.")
	flags.BoolVar(&runFlags.noEscape, "no-escape", false, "Run commands through the shell so wildcards expand.")
	flags.BoolVarP(&runFlags.quiet, "quiet", "q", false, "Don't echo command output.")
	flags.StringVar(&runFlags.record, "record", "", "Record the session to an asciicast `FILE`.cast.")
}
