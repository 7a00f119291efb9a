package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the cache key for a project without restoring or building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := c.inputs(cmd)
			key, err := c.app.Key(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if key == nil {
				_, _ = fmt.Fprintf(out, "no composer.lock or composer.json in %s\n", opts.Path)
				return nil
			}

			_, _ = fmt.Fprintln(out, key.String())
			for _, prefix := range key.FallbackPrefixes() {
				_, _ = fmt.Fprintf(out, "fallback: %s\n", prefix)
			}
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}
