// Package preview classifies files by extension and manages the transient
// local copies previews render from.
package preview

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/logging"
)

// Class is a rendering strategy for a file.
type Class int

const (
	// ClassUnknown covers extensions with no inline rendering; the user is
	// pointed at download instead.
	ClassUnknown Class = iota
	ClassText
	ClassImage
	ClassAudio
	ClassVideo
	ClassPDF
	// ClassOffice is deliberately not rendered inline. It is distinct from
	// ClassUnknown so the message can say why.
	ClassOffice
)

func (c Class) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassImage:
		return "image"
	case ClassAudio:
		return "audio"
	case ClassVideo:
		return "video"
	case ClassPDF:
		return "pdf"
	case ClassOffice:
		return "office"
	default:
		return "unknown"
	}
}

// Inline reports whether the class renders in the terminal. Only text does;
// everything else is handed to an external opener or declined.
func (c Class) Inline() bool { return c == ClassText }

var classes = map[string]Class{
	".txt": ClassText, ".md": ClassText, ".go": ClassText, ".py": ClassText,
	".js": ClassText, ".ts": ClassText, ".json": ClassText, ".yaml": ClassText,
	".yml": ClassText, ".toml": ClassText, ".xml": ClassText, ".csv": ClassText,
	".log": ClassText, ".sh": ClassText, ".html": ClassText, ".css": ClassText,
	".sql": ClassText, ".ini": ClassText, ".conf": ClassText,

	".png": ClassImage, ".jpg": ClassImage, ".jpeg": ClassImage,
	".gif": ClassImage, ".webp": ClassImage, ".svg": ClassImage,
	".bmp": ClassImage, ".ico": ClassImage,

	".mp3": ClassAudio, ".wav": ClassAudio, ".flac": ClassAudio,
	".ogg": ClassAudio, ".m4a": ClassAudio,

	".mp4": ClassVideo, ".webm": ClassVideo, ".mkv": ClassVideo,
	".mov": ClassVideo, ".avi": ClassVideo,

	".pdf": ClassPDF,

	".doc": ClassOffice, ".docx": ClassOffice, ".xls": ClassOffice,
	".xlsx": ClassOffice, ".ppt": ClassOffice, ".pptx": ClassOffice,
}

// Classify maps a file extension (with or without the leading dot) to its
// rendering class. Matching is case-insensitive.
func Classify(ext string) Class {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return classes[ext]
}

// Resource is a downloaded copy of a file staged for preview. Close removes
// the backing temp file; it is safe to call more than once, and exactly one
// removal happens no matter which exit path closes it.
type Resource struct {
	Path  string
	Class Class
	Name  string

	closed bool
}

// Stage writes the file's bytes to a temp file and returns the resource.
// The caller owns it and must Close it when the preview ends.
func Stage(name, ext string, r io.Reader) (*Resource, error) {
	suffix := ""
	if strings.HasPrefix(ext, ".") {
		suffix = ext
	}
	f, err := os.CreateTemp("", "cloud-dist-preview-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("staging preview: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("staging preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Resource{Path: f.Name(), Class: Classify(ext), Name: name}, nil
}

// Close releases the staged file. Subsequent calls are no-ops.
func (r *Resource) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		logging.Warn("removing preview temp file", zap.String("path", r.Path), zap.Error(err))
		return err
	}
	return nil
}

// Holder owns at most one live preview resource. Setting a new one closes
// the previous, so a preview opened over another never leaks its temp file.
type Holder struct {
	current *Resource
}

// Set installs a resource, closing any previous one first.
func (h *Holder) Set(r *Resource) {
	if h.current != nil {
		h.current.Close()
	}
	h.current = r
}

// Current returns the live resource, or nil.
func (h *Holder) Current() *Resource { return h.current }

// Close releases the live resource, if any.
func (h *Holder) Close() {
	h.Set(nil)
}
