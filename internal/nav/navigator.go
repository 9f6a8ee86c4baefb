package nav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/logging"
)

// Client is the remote surface the navigator drives.
type Client interface {
	TreeLister
	CreateFolder(ctx context.Context, parentID int64, name string) (string, error)
	Rename(ctx context.Context, identity, name string) error
	Move(ctx context.Context, identity, parentIdentity string) error
	Delete(ctx context.Context, identity string) error
	Upload(ctx context.Context, name string, r io.Reader, size int64, progress api.ProgressFunc) (api.UploadResult, error)
	RegisterUpload(ctx context.Context, parentID int64, repositoryIdentity, ext, name string) error
}

// Validation errors raised before any network call is made.
var (
	ErrNoTarget        = errors.New("no target folder selected")
	ErrRootUpload      = errors.New("cannot upload directly to the root; pick a folder")
	ErrSameParent      = errors.New("entry is already in that folder")
	ErrMoveIntoSelf    = errors.New("cannot move a folder into itself")
	ErrMoveIntoSubtree = errors.New("cannot move a folder into its own subtree")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrNotAFolder      = errors.New("entry is not a folder")
)

// Navigator owns the breadcrumb, the current listing, and every mutating
// workflow. It is not safe for concurrent use; callers serialize access the
// way an event loop does.
type Navigator struct {
	client   Client
	path     *Path
	listing  *Listing
	pageSize int
}

// New creates a navigator positioned at the root with an empty listing.
func New(client Client, pageSize int) *Navigator {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &Navigator{
		client:   client,
		path:     NewPath(),
		listing:  &Listing{},
		pageSize: pageSize,
	}
}

// Path returns the breadcrumb. Mutating it through navigation methods below
// keeps the listing epoch in step; callers should not drive it directly.
func (n *Navigator) Path() *Path { return n.path }

// Listing returns the current-folder listing cache.
func (n *Navigator) Listing() *Listing { return n.listing }

// PageSize returns the listing page size.
func (n *Navigator) PageSize() int { return n.pageSize }

// Descend enters a folder entry and begins a refresh, returning its epoch.
func (n *Navigator) Descend(folder api.Entry) (uint64, error) {
	if !folder.IsFolder() {
		return 0, ErrNotAFolder
	}
	n.path.Descend(Segment{ID: folder.ID, Identity: folder.Identity, Name: folder.Name})
	return n.listing.Begin(), nil
}

// JumpTo navigates to a breadcrumb ancestor and begins a refresh.
func (n *Navigator) JumpTo(index int) uint64 {
	n.path.JumpTo(index)
	return n.listing.Begin()
}

// Ascend navigates to the parent folder, staying put at the root, and begins
// a refresh.
func (n *Navigator) Ascend() uint64 {
	if !n.path.AtRoot() {
		n.path.JumpTo(n.path.Depth() - 1)
	}
	return n.listing.Begin()
}

// ResetToRoot jumps back to the root and begins a refresh.
func (n *Navigator) ResetToRoot() uint64 {
	n.path.ResetToRoot()
	return n.listing.Begin()
}

// BeginRefresh starts a refresh of the current folder without moving,
// returning the identity to fetch and the epoch to tag the result with.
func (n *Navigator) BeginRefresh() (identity string, epoch uint64) {
	return n.path.Current().Identity, n.listing.Begin()
}

// Fetch lists the folder the epoch was issued for. The caller applies the
// result through CompleteRefresh; splitting the two lets an event loop run
// the fetch off-thread.
func (n *Navigator) Fetch(ctx context.Context, identity string) ([]api.Entry, int64, error) {
	return n.client.ListEntries(ctx, identity, 1, n.pageSize)
}

// CompleteRefresh installs a fetch result under its epoch tag. Stale results
// are dropped. On error the listing is cleared; recovery is the next
// navigation or manual refresh.
func (n *Navigator) CompleteRefresh(epoch uint64, entries []api.Entry, total int64, err error) bool {
	if err != nil {
		logging.Warn("listing refresh failed",
			zap.Uint64("epoch", epoch),
			zap.Error(err))
		return n.listing.Fail(epoch)
	}
	return n.listing.Apply(epoch, entries, total)
}

// Refresh synchronously reloads the current folder. CLI paths use this; the
// interactive browser uses the Begin/Fetch/Complete split instead.
func (n *Navigator) Refresh(ctx context.Context) error {
	identity, epoch := n.BeginRefresh()
	entries, total, err := n.Fetch(ctx, identity)
	n.CompleteRefresh(epoch, entries, total, err)
	return err
}

// CreateFolder creates a folder under the current folder and refreshes.
func (n *Navigator) CreateFolder(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if _, err := n.client.CreateFolder(ctx, n.path.Current().ID, name); err != nil {
		return err
	}
	return n.Refresh(ctx)
}

// RenameEntry commits a rename edit buffer. An empty or whitespace-only
// buffer, or one equal to the committed name, ends the edit without touching
// the server; renamed reports whether a call was made.
func (n *Navigator) RenameEntry(ctx context.Context, entry api.Entry, buffer string) (renamed bool, err error) {
	name := strings.TrimSpace(buffer)
	if name == "" || name == entry.Name {
		return false, nil
	}
	if err := n.client.Rename(ctx, entry.Identity, name); err != nil {
		return false, err
	}
	return true, n.Refresh(ctx)
}

// DeleteEntry removes an entry and refreshes.
func (n *Navigator) DeleteEntry(ctx context.Context, entry api.Entry) error {
	if err := n.client.Delete(ctx, entry.Identity); err != nil {
		return err
	}
	return n.Refresh(ctx)
}

// ValidateMove applies every client-side move rule: the target must differ
// from the entry's current parent, and a folder may not move into itself or
// anywhere in its own subtree. subtree may be nil for file moves.
func ValidateMove(entry api.Entry, target Segment, currentParent string, subtree map[string]bool) error {
	if target.Identity == currentParent {
		return ErrSameParent
	}
	if entry.IsFolder() {
		if target.Identity == entry.Identity {
			return ErrMoveIntoSelf
		}
		if subtree[target.Identity] {
			return ErrMoveIntoSubtree
		}
	}
	return nil
}

// MoveWorkflow validates and performs a move. currentParent is the identity
// of the folder the entry currently lives in.
func MoveWorkflow(ctx context.Context, client Client, entry api.Entry, target Segment, currentParent string) error {
	var subtree map[string]bool
	if entry.IsFolder() {
		var err error
		subtree, err = SubtreeIdentities(ctx, client, entry.Identity)
		if err != nil {
			return fmt.Errorf("checking move target: %w", err)
		}
	}
	if err := ValidateMove(entry, target, currentParent, subtree); err != nil {
		return err
	}
	return client.Move(ctx, entry.Identity, target.Identity)
}

// MoveEntry reparents an entry out of the current folder into target, then
// refreshes.
func (n *Navigator) MoveEntry(ctx context.Context, entry api.Entry, target Segment) error {
	if err := MoveWorkflow(ctx, n.client, entry, target, n.path.Current().Identity); err != nil {
		return err
	}
	return n.Refresh(ctx)
}

// UploadOutcome reports how an upload workflow ended.
type UploadOutcome struct {
	// Duplicate is set when registration was rejected because the name
	// already exists in the target folder. The transfer itself succeeded and
	// the existing entry stands; this is a notice, not a failure.
	Duplicate bool
	Result    api.UploadResult
}

// UploadWorkflow runs the two-step upload: transfer the bytes, then register
// the blob under the target folder. The root is not a valid upload
// destination. filename supplies both the stored name and the extension.
func UploadWorkflow(ctx context.Context, client Client, target Segment, filename string, r io.Reader, size int64, progress api.ProgressFunc) (UploadOutcome, error) {
	if target.IsRoot() {
		return UploadOutcome{}, ErrRootUpload
	}
	if target.ID == 0 {
		return UploadOutcome{}, ErrNoTarget
	}

	result, err := client.Upload(ctx, filename, r, size, progress)
	if err != nil {
		return UploadOutcome{}, fmt.Errorf("transfer: %w", err)
	}

	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	if result.Ext != "" {
		ext = result.Ext
	}
	if result.Name != "" {
		name = result.Name
	}

	err = client.RegisterUpload(ctx, target.ID, result.Identity, ext, name)
	if err != nil {
		if api.IsDuplicateName(err) {
			logging.Info("upload name already taken",
				zap.String("name", filename),
				zap.String("folder", target.Name))
			return UploadOutcome{Duplicate: true, Result: result}, nil
		}
		return UploadOutcome{}, fmt.Errorf("register: %w", err)
	}
	return UploadOutcome{Result: result}, nil
}

// UploadFile runs UploadWorkflow against the current navigator and refreshes
// the listing afterwards; a duplicate-name outcome still refreshes so the
// existing entry shows.
func (n *Navigator) UploadFile(ctx context.Context, target Segment, filename string, r io.Reader, size int64, progress api.ProgressFunc) (UploadOutcome, error) {
	outcome, err := UploadWorkflow(ctx, n.client, target, filename, r, size, progress)
	if err != nil {
		return outcome, err
	}
	return outcome, n.Refresh(ctx)
}
