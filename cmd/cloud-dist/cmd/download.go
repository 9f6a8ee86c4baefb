package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/history"
	"github.com/Frida7771/cloud-dist/internal/logging"
	"github.com/Frida7771/cloud-dist/internal/nav"
)

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <remote-file>",
	Short: "Download a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		entry, _, err := resolveEntry(ctx, nav.New(client, cfg.PageSize), args[0])
		if err != nil {
			return err
		}
		if entry.IsFolder() {
			return fmt.Errorf("%s is a folder", entry.Name)
		}

		body, serverName, size, err := client.Download(ctx, entry.RepositoryIdentity)
		if err != nil {
			return err
		}
		defer body.Close()

		outPath := downloadOutput
		if outPath == "" {
			outPath = serverName
		}
		if outPath == "" {
			outPath = entry.DisplayName()
		}

		out, err := os.Create(outPath)
		if err != nil {
			return err
		}

		bar := progressbar.DefaultBytes(size, "downloading "+entry.DisplayName())
		written, err := io.Copy(io.MultiWriter(out, bar), body)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(outPath)
			return err
		}
		fmt.Println()

		if store := openHistory(cfg); store != nil {
			defer store.Close()
			if err := store.Add(history.Record{
				Direction:          history.DirectionDownload,
				Name:               entry.DisplayName(),
				RepositoryIdentity: entry.RepositoryIdentity,
				Size:               written,
			}); err != nil {
				logging.Warn("recording download", zap.Error(err))
			}
		}

		fmt.Printf("Downloaded %s (%d bytes)\n", outPath, written)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "write to this path instead of the server filename")
	rootCmd.AddCommand(downloadCmd)
}
