package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// info [--contents]: show where the store lives, how large it is and,
// optionally, what it holds.
func infoCmd(opts *rootOptions) *cobra.Command {
	var contents bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the backing file location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.app.store
			info, err := store.Stat()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File path: %s\n", info.Path)
			if !info.Exists {
				fmt.Fprintln(out, "File not found")
				return nil
			}
			fmt.Fprintf(out, "File size: %d bytes\n", info.Size)

			if !contents {
				return nil
			}
			raw, err := store.Contents()
			if err != nil {
				fmt.Fprintf(out, "Could not read file: %v\n", err)
				return nil
			}
			fmt.Fprintln(out, "File contents:")
			fmt.Fprint(out, raw)
			return nil
		},
	}
	cmd.Flags().BoolVar(&contents, "contents", false, "also print the raw file contents")
	return cmd
}
