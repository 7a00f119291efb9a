package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newPreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pre",
		Short: "Restore the dependency cache and run the CI build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Pre(cmd.Context(), c.inputs(cmd))
		},
	}
	addInputFlags(cmd)
	return cmd
}

func (c *CLI) newPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Save the dependency cache recorded by pre",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			c.app.Post(cmd.Context())
		},
	}
}
