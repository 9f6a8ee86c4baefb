package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/nav"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <remote-path>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		remotePath := strings.Trim(args[0], "/")
		if remotePath == "" {
			return fmt.Errorf("a folder name is required")
		}

		ctx := cmd.Context()
		n := nav.New(client, cfg.PageSize)
		parent, err := resolveFolder(ctx, n, path.Dir(remotePath))
		if err != nil {
			return err
		}

		name := path.Base(remotePath)
		if err := n.CreateFolder(ctx, name); err != nil {
			if api.IsDuplicateName(err) {
				return fmt.Errorf("a folder named %q already exists in %s", name, parent.Name)
			}
			return err
		}

		fmt.Printf("Created %s in %s\n", name, parent.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mkdirCmd)
}
