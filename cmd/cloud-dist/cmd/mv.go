package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Frida7771/cloud-dist/internal/nav"
)

var mvCmd = &cobra.Command{
	Use:   "mv <remote-path> <remote-folder>",
	Short: "Move an entry into another folder",
	Long: `Moves a file or folder into another folder. "/" names the root.
A folder can never be moved into itself or its own subtree.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		n := nav.New(client, cfg.PageSize)
		entry, parent, err := resolveEntry(ctx, n, args[0])
		if err != nil {
			return err
		}

		target, err := resolveFolder(ctx, n, args[1])
		if err != nil {
			return err
		}

		if err := nav.MoveWorkflow(ctx, client, entry, target, parent.Identity); err != nil {
			return err
		}

		fmt.Printf("Moved %s to %s\n", entry.DisplayName(), target.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mvCmd)
}
