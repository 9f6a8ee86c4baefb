package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/nav"
)

var lsAll bool

var lsCmd = &cobra.Command{
	Use:   "ls [remote-path]",
	Short: "List a folder's contents",
	Long: `Lists the contents of a remote folder. With no argument the root is
listed. At the root only folders are shown unless --all is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		remotePath := ""
		if len(args) == 1 {
			remotePath = args[0]
		}

		ctx := cmd.Context()
		n := nav.New(client, cfg.PageSize)
		if _, err := resolveFolder(ctx, n, remotePath); err != nil {
			return err
		}

		// Files don't live at the root; don't render them there.
		folders, files := n.Listing().Partition(n.Path().AtRoot() && !lsAll)
		entries := append(folders, files...)

		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Println("Empty folder")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tSIZE\tCREATED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.DisplayName(), entryKind(e), entrySize(e), e.CreatedAt)
		}
		return w.Flush()
	},
}

func entryKind(e api.Entry) string {
	if e.IsFolder() {
		return "folder"
	}
	return "file"
}

func entrySize(e api.Entry) string {
	if e.IsFolder() {
		return "-"
	}
	return fmt.Sprintf("%d", e.Size)
}

func init() {
	lsCmd.Flags().BoolVar(&lsAll, "all", false, "show files at the root too")
	rootCmd.AddCommand(lsCmd)
}
