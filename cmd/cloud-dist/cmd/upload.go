package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/history"
	"github.com/Frida7771/cloud-dist/internal/logging"
	"github.com/Frida7771/cloud-dist/internal/nav"
)

var uploadName string

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file> <remote-folder>",
	Short: "Upload a file into a remote folder",
	Long: `Uploads a local file and registers it under the given remote folder.
The root is not a valid destination; name a folder.

Files above the configured chunk threshold are transferred in parts, with
instant-upload and resume support when the service already holds some or
all of the bytes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup()
		if err != nil {
			return err
		}

		localPath, remotePath := args[0], args[1]
		ctx := cmd.Context()

		target, err := resolveFolder(ctx, nav.New(client, cfg.PageSize), remotePath)
		if err != nil {
			return err
		}
		if target.IsRoot() {
			return nav.ErrRootUpload
		}

		f, err := os.Open(localPath)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", localPath)
		}

		filename := filepath.Base(localPath)
		if uploadName != "" {
			filename = uploadName
		}

		bar := progressbar.DefaultBytes(info.Size(), "uploading "+filename)
		progress := func(pct float64) {
			bar.Set64(int64(pct / 100 * float64(info.Size())))
		}

		var outcome nav.UploadOutcome
		if info.Size() > cfg.ChunkThresholdBytes {
			identity, err := client.ChunkedUpload(ctx, filename, f, info.Size(), cfg.ChunkSizeBytes, progress)
			if err != nil {
				return err
			}
			outcome, err = registerChunked(ctx, client, target, filename, identity)
			if err != nil {
				return err
			}
		} else {
			outcome, err = nav.UploadWorkflow(ctx, client, target, filename, f, info.Size(), progress)
			if err != nil {
				return err
			}
		}
		bar.Finish()
		fmt.Println()

		if store := openHistory(cfg); store != nil {
			defer store.Close()
			if err := store.Add(history.Record{
				Direction:          history.DirectionUpload,
				Name:               filename,
				Folder:             target.Name,
				RepositoryIdentity: outcome.Result.Identity,
				Size:               info.Size(),
				Duplicate:          outcome.Duplicate,
			}); err != nil {
				logging.Warn("recording upload", zap.Error(err))
			}
		}

		if outcome.Duplicate {
			fmt.Printf("%s already exists in %s; the existing entry was kept\n", filename, target.Name)
			return nil
		}
		fmt.Printf("Uploaded %s to %s\n", filename, target.Name)
		return nil
	},
}

// registerChunked attaches an already-transferred blob to the namespace,
// with the same duplicate-name handling as the single-shot path.
func registerChunked(ctx context.Context, client *api.Client, target nav.Segment, filename, identity string) (nav.UploadOutcome, error) {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)

	if err := client.RegisterUpload(ctx, target.ID, identity, ext, name); err != nil {
		if api.IsDuplicateName(err) {
			return nav.UploadOutcome{Duplicate: true, Result: api.UploadResult{Identity: identity}}, nil
		}
		return nav.UploadOutcome{}, fmt.Errorf("register: %w", err)
	}
	return nav.UploadOutcome{Result: api.UploadResult{Identity: identity, Ext: ext, Name: name}}, nil
}

func init() {
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "store under a different name")
	rootCmd.AddCommand(uploadCmd)
}
