package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Frida7771/cloud-dist/internal/nav"
	"github.com/Frida7771/cloud-dist/internal/tui"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <remote-path>",
	Short: "Delete an entry",
	Long:  `Deletes a file or folder. Folders are deleted with everything in them.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		n := nav.New(client, cfg.PageSize)
		entry, _, err := resolveEntry(ctx, n, args[0])
		if err != nil {
			return err
		}

		if !rmForce {
			prompt := fmt.Sprintf("Delete %s?", entry.DisplayName())
			if entry.IsFolder() {
				prompt = fmt.Sprintf("Delete folder %s and everything in it?", entry.Name)
			}
			result, err := tui.Confirm(prompt)
			if err != nil {
				return err
			}
			if !result.Confirmed {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := n.DeleteEntry(ctx, entry); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", entry.DisplayName())
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "delete without confirmation")
	rootCmd.AddCommand(rmCmd)
}
