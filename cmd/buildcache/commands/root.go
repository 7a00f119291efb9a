// Package commands implements the CLI commands for buildcache.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/buildcache/internal/app"
	"go.trai.ch/buildcache/internal/build"
	"go.trai.ch/buildcache/internal/core/domain"
)

const (
	// EnvInputPath is the runner input carrying the project path.
	EnvInputPath = "INPUT_PATH"
	// EnvInputSuffix is the runner input carrying the additional cache key.
	EnvInputSuffix = "INPUT_ADDITIONAL-COMPOSER-CACHE-KEY"

	flagPath   = "path"
	flagSuffix = "additional-composer-cache-key"
)

// CLI represents the command line interface for buildcache.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	getenv  func(string) string
}

// Application represents the application logic interface.
type Application interface {
	Pre(ctx context.Context, opts app.Options) error
	Post(ctx context.Context)
	Key(opts app.Options) (*domain.CacheKey, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "buildcache",
		Short:         "Dependency cache around the Shopware CI build",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
		getenv:  os.Getenv,
	}

	rootCmd.AddCommand(c.newPreCmd())
	rootCmd.AddCommand(c.newPostCmd())
	rootCmd.AddCommand(c.newKeyCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// WithEnv replaces the environment lookup used for runner inputs. Used for testing.
func (c *CLI) WithEnv(getenv func(string) string) *CLI {
	c.getenv = getenv
	return c
}

// addInputFlags registers the job input flags on cmd.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagPath, "p", "", "Project directory (defaults to $"+EnvInputPath+")")
	cmd.Flags().StringP(flagSuffix, "k", "", "Suffix appended to the cache key (defaults to $"+EnvInputSuffix+")")
}

// inputs reads the job inputs, falling back to the runner input variables
// for flags that were left empty.
func (c *CLI) inputs(cmd *cobra.Command) app.Options {
	path, _ := cmd.Flags().GetString(flagPath)
	suffix, _ := cmd.Flags().GetString(flagSuffix)

	if path == "" {
		path = c.getenv(EnvInputPath)
	}
	if suffix == "" {
		suffix = c.getenv(EnvInputSuffix)
	}

	return app.Options{
		Path:   path,
		Suffix: suffix,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
}
