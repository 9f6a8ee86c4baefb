package api

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/logging"
)

// ChunkedUpload transfers a large file in parts and returns the stored
// blob's repository identity. The file is hashed first so the service can
// answer with an existing blob (instant upload) or with the parts already
// received from an interrupted session, which are skipped on resume.
func (c *Client) ChunkedUpload(ctx context.Context, filename string, f io.ReadSeeker, size, chunkSize int64, progress ProgressFunc) (string, error) {
	if chunkSize <= 0 {
		return "", fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	sum, err := hashFile(f)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", filename, err)
	}

	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)

	prep, err := c.PrepareUpload(ctx, sum, name, ext)
	if err != nil {
		return "", fmt.Errorf("preparing upload: %w", err)
	}
	if prep.Identity != "" {
		// The blob already exists server-side; nothing to transfer.
		logging.Debug("instant upload", zap.String("name", filename), zap.String("md5", sum))
		if progress != nil {
			progress(100)
		}
		return prep.Identity, nil
	}

	have := make(map[int]string, len(prep.Parts))
	for _, p := range prep.Parts {
		have[p.PartNumber] = p.Etag
	}

	total := int((size + chunkSize - 1) / chunkSize)
	parts := make([]UploadPart, 0, total)
	buf := make([]byte, chunkSize)

	for num := 1; num <= total; num++ {
		offset := int64(num-1) * chunkSize
		length := chunkSize
		if offset+length > size {
			length = size - offset
		}

		etag, done := have[num]
		if !done {
			if _, err := f.Seek(offset, io.SeekStart); err != nil {
				return "", err
			}
			if _, err := io.ReadFull(f, buf[:length]); err != nil {
				return "", fmt.Errorf("reading chunk %d: %w", num, err)
			}
			etag, err = c.UploadChunk(ctx, prep.Key, prep.UploadID, num, buf[:length])
			if err != nil {
				return "", err
			}
		}

		parts = append(parts, UploadPart{PartNumber: num, Etag: etag})
		if progress != nil {
			progress(float64(num) / float64(total) * 100)
		}
	}

	identity, err := c.CompleteUpload(ctx, sum, name, ext, size, prep.Key, prep.UploadID, parts)
	if err != nil {
		return "", fmt.Errorf("completing upload: %w", err)
	}
	return identity, nil
}

func hashFile(f io.ReadSeeker) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
