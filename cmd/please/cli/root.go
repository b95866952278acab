package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/please/internal/pipeline"
	"github.com/felixgeelhaar/please/internal/ui"
)

var (
	verbose      bool
	providerName string
	modelName    string
	pluginPath   string
	ciMode       bool
	autoExecute  bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "please [request...]",
	Short: "Turn plain English into shell commands",
	Long: `please asks a language model for the shell command that does what you
describe, shows it, and runs it once you confirm. The last command and its
output are remembered and given to the model as context next time.

  please list all python files
  please last`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runRequest(cmd, strings.Join(args, " "))
	},
}

var runCmd = &cobra.Command{
	Use:   "run [request...]",
	Short: "Suggest a command for a request",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, strings.Join(args, " "))
	},
}

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the last suggested command and its outcome",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, pipeline.ShowLast)
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err))
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(lastCmd)

	flags := RootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&providerName, "provider", "p", "", "AI provider (openai, ollama, gemini, anthropic, cli, plugin, stub)")
	flags.StringVarP(&modelName, "model", "m", "", "Model name (default depends on provider)")
	flags.StringVar(&pluginPath, "plugin-path", "", "Provider plugin binary, used with --provider plugin")
	flags.BoolVar(&ciMode, "ci", false, "CI mode: JSON output, non-interactive")
	flags.BoolVarP(&autoExecute, "execute", "e", false, "Execute the suggested command without asking")
}

func runRequest(cmd *cobra.Command, request string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	r, err := env.NewRunner(cmd)
	if err != nil {
		return err
	}
	return r.Run(context.Background(), request)
}
