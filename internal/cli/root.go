package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ohare93/devlink/internal/devenv"
	"github.com/ohare93/devlink/internal/workspace"
)

// missingExampleMessage is printed when devlink is not run from an example
const missingExampleMessage = "Must be called from a directory under examples/."

var rootCmd = &cobra.Command{
	Use:   "devlink",
	Short: "Develop example apps against the workspace's local packages",
	Long: `devlink prepares an example project for development against the local
packages of the workspace it lives in.

Run it from inside examples/<name>:
- devlink dev -- <command...>   merge, install, link local packages, watch them
                                and run <command> in the foreground
- devlink sync                  merge, install and link once, without watching
- devlink merge                 print the merged manifest without writing it
- devlink render <file>         render an HTML document template
- devlink config                show the effective workspace configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GlobalOptions holds global flags for path overrides
type GlobalOptions struct {
	Root       string // Workspace root; discovered from the working directory when empty
	ProjectDir string // Override for current working directory
	ConfigPath string // Override for <root>/devlink.yaml
	LogLevel   string
}

// GlobalOpts holds the parsed global flags (exported for testing)
var GlobalOpts GlobalOptions

// GetWorkingDir returns the working directory, respecting the --project-dir override
func GetWorkingDir() (string, error) {
	if GlobalOpts.ProjectDir != "" {
		return GlobalOpts.ProjectDir, nil
	}
	return os.Getwd()
}

// LoadWorkspaceForCommand resolves the workspace from global flags
func LoadWorkspaceForCommand() (*workspace.Context, error) {
	root := GlobalOpts.Root
	if root == "" {
		cwd, err := GetWorkingDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		if root, err = workspace.FindRoot(cwd); err != nil {
			return nil, err
		}
	}
	return workspace.Load(root, GlobalOpts.ConfigPath)
}

// NewSessionForCommand builds a session for the example named by the
// working directory.
func NewSessionForCommand(cmd *cobra.Command) (*devenv.Session, error) {
	ws, err := LoadWorkspaceForCommand()
	if err != nil {
		return nil, err
	}
	cwd, err := GetWorkingDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	ex, err := ws.Example(cwd)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &devenv.Session{
		Workspace: ws,
		Example:   ex,
		Runner:    &devenv.ExecRunner{Stdout: out, Stderr: cmd.ErrOrStderr()},
		Notifier:  devenv.NewNoticeWriter(out, ws.Config.NoticeMarker, isTerminal(out)),
		Logger:    newLogger(cmd.ErrOrStderr(), GlobalOpts.LogLevel),
		WorkDir:   cwd,
	}, nil
}

// handleMissingExample turns "not inside an example" into a message and a
// clean exit.
func handleMissingExample(cmd *cobra.Command, err error) error {
	if errors.Is(err, workspace.ErrExampleNotFound) || errors.Is(err, workspace.ErrRootNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), missingExampleMessage)
		return nil
	}
	return err
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.Root, "root", "", "Workspace root (default: nearest parent with devlink.yaml or packages/ and examples/)")
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.ProjectDir, "project-dir", "", "Override working directory")
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.ConfigPath, "config", "", "Config file (default: <root>/devlink.yaml)")
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(devCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(configCmd)
}
