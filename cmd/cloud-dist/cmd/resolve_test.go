package cmd

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/nav"
)

// fakeRemote is an in-memory namespace keyed by folder identity.
type fakeRemote struct {
	folders map[string][]api.Entry
}

func (f *fakeRemote) ListEntries(_ context.Context, identity string, _, _ int) ([]api.Entry, int64, error) {
	entries := f.folders[identity]
	return entries, int64(len(entries)), nil
}

func (f *fakeRemote) ListFolders(_ context.Context, identity string) ([]api.FolderRef, error) {
	var refs []api.FolderRef
	for _, e := range f.folders[identity] {
		if e.IsFolder() {
			refs = append(refs, api.FolderRef{Identity: e.Identity, Name: e.Name})
		}
	}
	return refs, nil
}

func (f *fakeRemote) CreateFolder(context.Context, int64, string) (string, error) { return "new", nil }
func (f *fakeRemote) Rename(context.Context, string, string) error               { return nil }
func (f *fakeRemote) Move(context.Context, string, string) error                 { return nil }
func (f *fakeRemote) Delete(context.Context, string) error                       { return nil }
func (f *fakeRemote) RegisterUpload(context.Context, int64, string, string, string) error {
	return nil
}

func (f *fakeRemote) Upload(_ context.Context, name string, r io.Reader, _ int64, _ api.ProgressFunc) (api.UploadResult, error) {
	io.Copy(io.Discard, r)
	return api.UploadResult{Identity: "blob-" + name}, nil
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{folders: map[string][]api.Entry{
		"": {
			{ID: 1, Identity: "docs", Name: "docs"},
		},
		"docs": {
			{ID: 3, Identity: "drafts", Name: "drafts"},
			{Identity: "file-a", RepositoryIdentity: "repo-a", Name: "notes", Ext: ".txt"},
		},
	}}
}

func newTestNavigator() *nav.Navigator {
	return nav.New(newFakeRemote(), 200)
}

func TestResolveFolder(t *testing.T) {
	ctx := context.Background()
	n := newTestNavigator()

	root, err := resolveFolder(ctx, n, "")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	for _, p := range []string{"docs/drafts", "/docs/drafts/", "docs//drafts"} {
		seg, err := resolveFolder(ctx, n, p)
		require.NoError(t, err, "path %q", p)
		assert.Equal(t, "drafts", seg.Name)
		assert.Equal(t, int64(3), seg.ID)
	}

	_, err = resolveFolder(ctx, n, "docs/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestResolveFolderLeavesListingLoaded(t *testing.T) {
	ctx := context.Background()
	n := newTestNavigator()

	_, err := resolveFolder(ctx, n, "docs")
	require.NoError(t, err)

	// ls reads straight off the navigator after resolving.
	assert.True(t, n.Listing().Loaded())
	assert.Equal(t, "docs", n.Path().Current().Name)
	folders, files := n.Listing().Partition(n.Path().AtRoot())
	assert.Len(t, folders, 1)
	assert.Len(t, files, 1)
}

func TestResolveFolderDoesNotMatchFiles(t *testing.T) {
	_, err := resolveFolder(context.Background(), newTestNavigator(), "docs/notes")
	require.Error(t, err)
}

func TestResolveEntry(t *testing.T) {
	ctx := context.Background()
	n := newTestNavigator()

	// Files match with or without their extension.
	for _, p := range []string{"docs/notes", "docs/notes.txt"} {
		entry, parent, err := resolveEntry(ctx, n, p)
		require.NoError(t, err, "path %q", p)
		assert.Equal(t, "repo-a", entry.RepositoryIdentity)
		assert.Equal(t, "docs", parent.Name)
	}

	// Folders resolve as entries too.
	entry, parent, err := resolveEntry(ctx, n, "docs/drafts")
	require.NoError(t, err)
	assert.True(t, entry.IsFolder())
	assert.Equal(t, "docs", parent.Name)

	_, _, err = resolveEntry(ctx, n, "")
	require.Error(t, err, "root is not an entry")
}
