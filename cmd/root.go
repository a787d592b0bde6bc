package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "polyglotls",
	Short: "polyglotls drives language servers on behalf of an editor",
	Long: `polyglotls is a multi-language LSP integration layer. It keeps one
language server per active language, resolves and spawns servers lazily on
first use, and exposes completion, hover, go-to-definition and diagnostics
to whatever editor-shaped thing is calling it.

Run "polyglotls diag <file>" for a one-shot diagnostics check, or
"polyglotls watch" for a live registry status dashboard.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(watchCmd)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "polyglotls: "+format+"\n", args...)
	os.Exit(1)
}
