package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Frida7771/cloud-dist/internal/nav"
)

var renameCmd = &cobra.Command{
	Use:   "rename <remote-path> <new-name>",
	Short: "Rename an entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		name := strings.TrimSpace(args[1])
		if name == "" {
			return fmt.Errorf("the new name must not be empty")
		}

		ctx := cmd.Context()
		n := nav.New(client, cfg.PageSize)
		entry, _, err := resolveEntry(ctx, n, args[0])
		if err != nil {
			return err
		}

		renamed, err := n.RenameEntry(ctx, entry, name)
		if err != nil {
			return err
		}
		if !renamed {
			fmt.Println("Name unchanged")
			return nil
		}

		fmt.Printf("Renamed %s to %s\n", entry.DisplayName(), name+entry.Ext)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
