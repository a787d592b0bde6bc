package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"polyglotls/config"
	"polyglotls/lsp"
	"polyglotls/workspace"
)

var diagWaitTimeout time.Duration

var diagCmd = &cobra.Command{
	Use:   "diag <file>",
	Short: "Open one file and print the first diagnostics push for it",
	Long: `diag detects the file's language, ensures a language server is
running for it, sends textDocument/didOpen, and waits (bounded) for the
first publishDiagnostics notification, printing whatever it receives.

This exercises the full editor -> registry -> client -> transport ->
child process -> transport -> registry -> editor loop end to end.`,
	Args: cobra.ExactArgs(1),
	Run:  runDiag,
}

func init() {
	diagCmd.Flags().DurationVar(&diagWaitTimeout, "timeout", 5*time.Second, "how long to wait for diagnostics")
}

func runDiag(cmd *cobra.Command, args []string) {
	path, err := filepath.Abs(args[0])
	if err != nil {
		fail("resolve path: %v", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	tag, ok := lsp.LanguageFromExtension(ext)
	if !ok {
		fail("no known language for extension %q", ext)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		fail("read %s: %v", path, err)
	}

	root, err := workspace.DetectRoot()
	if err != nil {
		fail("detect workspace root: %v", err)
	}

	settings, err := config.Load(root)
	if err != nil {
		fail("load settings: %v", err)
	}

	registry := lsp.NewRegistry()
	registry.SetRoot(root)
	registry.SetEnabled(settings.LSPEnabled)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = registry.StopAll(ctx)
	}()

	registry.NotifyDidOpen(tag, path, string(text), settings)

	deadline := time.Now().Add(diagWaitTimeout)
	for time.Now().Before(deadline) {
		registry.PollReady()
		for _, fd := range registry.DrainDiagnostics() {
			if fd.Path != path {
				continue
			}
			printDiagnostics(fd)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	if registry.HasClientFor(tag) {
		fmt.Println("no diagnostics received within timeout (clean file, or server is slow)")
		return
	}
	fail("no language server became ready for %s within timeout", tag)
}

func printDiagnostics(fd lsp.FileDiagnostics) {
	if len(fd.Diagnostics) == 0 {
		fmt.Printf("%s: no diagnostics\n", fd.Path)
		return
	}
	for _, d := range fd.Diagnostics {
		fmt.Printf("%s:%d:%d: %s: %s\n", fd.Path, d.StartLine+1, d.StartCol+1, d.Severity, d.Message)
	}
}
