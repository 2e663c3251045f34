package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitService    = 2
	ExitNetwork    = 3
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "deepseek",
		Short: "DeepSeek chat completion client",
		Long: `deepseek sends chat completion requests to the DeepSeek API.

Configuration comes from the environment (DEEPSEEK_API_KEY, DEEPSEEK_API_BASE_URL, ...)
and .env files in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newChatCmd(), newBotCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deepseek-go %s\n", deepseek.Version)
		},
	}
}

// exitError wraps an error with an exit code. reported means the error was
// already written to stderr.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}
