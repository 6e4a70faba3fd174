package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective workspace configuration",
	Long: `Show the configuration devlink uses for the current workspace: values from
devlink.yaml at the workspace root, with defaults filled in.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	ws, err := LoadWorkspaceForCommand()
	if err != nil {
		return err
	}
	cfg := ws.Config

	styled := isTerminal(cmd.OutOrStdout())
	label := func(s string) string {
		if styled {
			return StyleLabel.Render(s)
		}
		return s
	}
	key := func(s string) string {
		if styled {
			return StyleKey.Render(s)
		}
		return s
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, label("Workspace: ")+ws.Root)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s: %s\n", key("packages_dir"), cfg.PackagesDir)
	fmt.Fprintf(out, "  %s: %s\n", key("examples_dir"), cfg.ExamplesDir)
	fmt.Fprintf(out, "  %s: %s\n", key("deps_dir"), cfg.DepsDir)
	fmt.Fprintf(out, "  %s: %s\n", key("manifest_name"), cfg.ManifestName)
	fmt.Fprintf(out, "  %s: %s\n", key("clean"), listOrEmpty(cfg.Clean, styled))
	fmt.Fprintf(out, "  %s: %s\n", key("ignore"), listOrEmpty(cfg.Ignore, styled))
	fmt.Fprintf(out, "  %s: %s\n", key("install"), strings.Join(cfg.Install, " "))
	fmt.Fprintf(out, "  %s: %s\n", key("notice_marker"), cfg.NoticeMarker)
	return nil
}

func listOrEmpty(items []string, styled bool) string {
	if len(items) == 0 {
		if styled {
			return StyleDim.Render("(empty)")
		}
		return "(empty)"
	}
	return strings.Join(items, ", ")
}
