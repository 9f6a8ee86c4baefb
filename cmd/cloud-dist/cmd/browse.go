package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Frida7771/cloud-dist/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the interactive namespace browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		store := openHistory(cfg)
		if store != nil {
			defer store.Close()
		}

		_, err = tui.Run(tui.NewBrowser(client, cfg.PageSize, store))
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
