package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var devCmd = &cobra.Command{
	Use:   "dev [-- command...]",
	Short: "Link local packages, watch them and run a command",
	Long: `Prepare the example in the working directory and keep it linked to the
workspace's local packages:

1. Remove build-tool caches from the example's dependency directory
2. Merge the example's external dependencies with those of its local packages
3. Rewrite the example manifest and run the install command
4. Copy each local package into the dependency directory
5. Watch every local package and recopy it whenever a file changes
6. Run <command> in the foreground

The session ends when the command exits or on interrupt. Without a command,
devlink watches until interrupted.

Example:
  devlink dev -- npx vite --port 3000`,
	RunE: runDev,
}

func runDev(cmd *cobra.Command, args []string) error {
	s, err := NewSessionForCommand(cmd)
	if err != nil {
		return handleMissingExample(cmd, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Dev(ctx, args)
}
