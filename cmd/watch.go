package cmd

import (
	"github.com/spf13/cobra"

	"polyglotls/config"
	"polyglotls/lsp"
	"polyglotls/tui"
	"polyglotls/workspace"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch a live dashboard of registry and language server state",
	Long: `watch opens a terminal dashboard that polls the registry once per
tick -- the same poll_ready call an editor integration would make every
frame -- and renders each known language's state plus a scrolling feed of
incoming diagnostics.`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) {
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

	if err := tui.StartDashboard(root, registry, settings); err != nil {
		fail("dashboard: %v", err)
	}
}
