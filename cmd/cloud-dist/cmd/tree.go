package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Frida7771/cloud-dist/internal/nav"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the full folder hierarchy",
	Long: `Walks the whole namespace and prints every folder, indented by
depth. The service has no recursive listing endpoint, so this issues one
listing call per folder.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		n := nav.New(client, cfg.PageSize)
		nodes, err := nav.SynthesizeTree(cmd.Context(), client,
			n.Path().Segments(), n.PageSize())
		if err != nil {
			return err
		}

		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(nodes)
		}

		fmt.Println(nav.RootName)
		for _, node := range nodes {
			fmt.Printf("%s%s/\n", strings.Repeat("  ", node.Depth+1), node.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
