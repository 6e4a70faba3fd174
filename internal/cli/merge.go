package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mergeDepsOnly bool

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Print the merged manifest without writing it",
	Long: `Show the manifest "devlink dev" would write for the example in the working
directory: the example manifest with its dependencies replaced by the
external dependencies overlaid with those of each local package.`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	s, err := NewSessionForCommand(cmd)
	if err != nil {
		return handleMissingExample(cmd, err)
	}

	plan, err := s.Plan()
	if err != nil {
		return err
	}

	var data []byte
	if mergeDepsOnly {
		data, err = plan.Merged.Encode()
	} else {
		data, err = plan.Manifest.Encode()
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeDepsOnly, "deps-only", false, "Print only the merged dependencies")
}
