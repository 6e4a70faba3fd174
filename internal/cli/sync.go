package cli

import (
	"github.com/spf13/cobra"

	"github.com/ohare93/devlink/internal/devenv"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge, install and link local packages once",
	Long: `Run the setup part of "devlink dev" without watching: clean caches,
rewrite the example manifest, install, and copy each local package into the
example's dependency directory.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	s, err := NewSessionForCommand(cmd)
	if err != nil {
		return handleMissingExample(cmd, err)
	}

	lock, err := devenv.AcquireLock(s.Example.Dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	_, err = s.Sync(cmd.Context())
	return err
}
