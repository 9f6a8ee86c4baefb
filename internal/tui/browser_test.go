package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/nav"
)

// fakeService is an in-memory namespace keyed by folder identity.
type fakeService struct {
	folders map[string][]api.Entry
	calls   []string
}

func newFakeService() *fakeService {
	f := &fakeService{folders: make(map[string][]api.Entry)}
	f.folders[""] = []api.Entry{
		{ID: 1, Identity: "docs", Name: "docs"},
		{ID: 2, Identity: "media", Name: "media"},
	}
	f.folders["docs"] = []api.Entry{
		{ID: 3, Identity: "drafts", Name: "drafts"},
		{Identity: "file-a", RepositoryIdentity: "repo-a", Name: "a", Ext: ".md", Size: 10},
		{Identity: "file-b", RepositoryIdentity: "repo-b", Name: "slides", Ext: ".pptx", Size: 99},
	}
	return f
}

func (f *fakeService) ListEntries(_ context.Context, identity string, _, _ int) ([]api.Entry, int64, error) {
	entries := f.folders[identity]
	return entries, int64(len(entries)), nil
}

func (f *fakeService) ListFolders(_ context.Context, identity string) ([]api.FolderRef, error) {
	var refs []api.FolderRef
	for _, e := range f.folders[identity] {
		if e.IsFolder() {
			refs = append(refs, api.FolderRef{Identity: e.Identity, Name: e.Name})
		}
	}
	return refs, nil
}

func (f *fakeService) CreateFolder(_ context.Context, parentID int64, name string) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("create %d %s", parentID, name))
	return "new", nil
}

func (f *fakeService) Rename(_ context.Context, identity, name string) error {
	f.calls = append(f.calls, fmt.Sprintf("rename %s %s", identity, name))
	return nil
}

func (f *fakeService) Move(_ context.Context, identity, parentIdentity string) error {
	f.calls = append(f.calls, fmt.Sprintf("move %s %s", identity, parentIdentity))
	return nil
}

func (f *fakeService) Delete(_ context.Context, identity string) error {
	f.calls = append(f.calls, fmt.Sprintf("delete %s", identity))
	return nil
}

func (f *fakeService) Upload(_ context.Context, name string, r io.Reader, _ int64, _ api.ProgressFunc) (api.UploadResult, error) {
	io.Copy(io.Discard, r)
	return api.UploadResult{Identity: "blob-" + name}, nil
}

func (f *fakeService) RegisterUpload(_ context.Context, parentID int64, repositoryIdentity, ext, name string) error {
	f.calls = append(f.calls, fmt.Sprintf("register %d %s", parentID, name+ext))
	return nil
}

func (f *fakeService) Download(_ context.Context, repositoryIdentity string) (io.ReadCloser, string, int64, error) {
	return io.NopCloser(strings.NewReader("content")), "", 7, nil
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// newTestBrowser returns a browser with the root listing already applied.
func newTestBrowser(t *testing.T, svc Service) BrowserModel {
	t.Helper()
	m := NewBrowser(svc, 200, nil)

	result, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = result.(BrowserModel)

	epoch := m.listing.Epoch() + 1
	m.listing.Begin()
	entries, total, _ := svc.ListEntries(context.Background(), "", 1, 200)
	result, _ = m.Update(listingResultMsg{Epoch: epoch, Entries: entries, Total: total})
	return result.(BrowserModel)
}

func TestBrowserInitialState(t *testing.T) {
	m := newTestBrowser(t, newFakeService())

	if m.state != StateBrowse {
		t.Errorf("expected browse state, got %s", m.state)
	}
	if !m.path.AtRoot() {
		t.Error("expected path at root")
	}
	if len(m.rows) != 2 {
		t.Errorf("expected 2 rows at root, got %d", len(m.rows))
	}
}

func TestBrowserRootHidesFiles(t *testing.T) {
	svc := newFakeService()
	svc.folders[""] = append(svc.folders[""],
		api.Entry{Identity: "stray", Name: "stray", Ext: ".txt"})
	m := newTestBrowser(t, svc)

	for _, row := range m.rows {
		if !row.IsFolder() {
			t.Errorf("file %s rendered at root", row.DisplayName())
		}
	}
}

func TestBrowserStaleListingDiscarded(t *testing.T) {
	m := newTestBrowser(t, newFakeService())

	first := m.listing.Begin()
	m.listing.Begin() // a newer refresh supersedes it

	result, _ := m.Update(listingResultMsg{
		Epoch:   first,
		Entries: []api.Entry{{ID: 9, Identity: "ghost", Name: "ghost"}},
		Total:   1,
	})
	m = result.(BrowserModel)

	for _, row := range m.rows {
		if row.Identity == "ghost" {
			t.Error("stale listing result was applied")
		}
	}
}

func TestBrowserDescendIntoFolder(t *testing.T) {
	svc := newFakeService()
	m := newTestBrowser(t, svc)

	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(BrowserModel)

	if !m.loading {
		t.Error("expected loading while listing fetch runs")
	}
	if m.path.Current().Identity != "docs" {
		t.Errorf("expected current folder docs, got %q", m.path.Current().Identity)
	}

	entries, total, _ := svc.ListEntries(context.Background(), "docs", 1, 200)
	result, _ = m.Update(listingResultMsg{Epoch: m.listing.Epoch(), Entries: entries, Total: total})
	m = result.(BrowserModel)

	// drafts folder plus two files, folders first
	if len(m.rows) != 3 {
		t.Fatalf("expected 3 rows in docs, got %d", len(m.rows))
	}
	if !m.rows[0].IsFolder() {
		t.Error("expected folders sorted before files")
	}
}

func TestBrowserAscendFromRootStaysPut(t *testing.T) {
	m := newTestBrowser(t, newFakeService())

	result, _ := m.Update(keyRune('h'))
	m = result.(BrowserModel)

	if !m.path.AtRoot() {
		t.Error("ascending from root should stay at root")
	}
	if m.loading {
		t.Error("no refresh should start when already at root")
	}
}

func TestBrowserRenameEscCancelsQuietly(t *testing.T) {
	svc := newFakeService()
	m := newTestBrowser(t, svc)

	result, _ := m.Update(keyRune('e'))
	m = result.(BrowserModel)
	if m.state != StateRename {
		t.Fatalf("expected rename state, got %s", m.state)
	}

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = result.(BrowserModel)
	if m.state != StateBrowse {
		t.Errorf("expected browse state after esc, got %s", m.state)
	}
	if len(svc.calls) != 0 {
		t.Errorf("cancel must not reach the network, got %v", svc.calls)
	}
}

func TestBrowserRenameEmptyBufferEndsEdit(t *testing.T) {
	svc := newFakeService()
	m := newTestBrowser(t, svc)

	result, _ := m.Update(keyRune('e'))
	m = result.(BrowserModel)
	m.nameInput.SetValue("   ")

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(BrowserModel)

	if m.state != StateBrowse {
		t.Errorf("expected browse state, got %s", m.state)
	}
	if m.loading {
		t.Error("empty buffer must not start a rename")
	}
	if len(svc.calls) != 0 {
		t.Errorf("empty buffer must not reach the network, got %v", svc.calls)
	}
}

func TestBrowserDeleteConfirmFlow(t *testing.T) {
	svc := newFakeService()
	m := newTestBrowser(t, svc)

	result, _ := m.Update(keyRune('x'))
	m = result.(BrowserModel)
	if m.state != StateConfirmDelete {
		t.Fatalf("expected delete confirm, got %s", m.state)
	}

	// n cancels without a call
	result, _ = m.Update(keyRune('n'))
	m = result.(BrowserModel)
	if m.state != StateBrowse || len(svc.calls) != 0 {
		t.Fatalf("cancel failed: state=%s calls=%v", m.state, svc.calls)
	}

	// y runs the delete command
	result, _ = m.Update(keyRune('x'))
	m = result.(BrowserModel)
	result, cmd := m.Update(keyRune('y'))
	m = result.(BrowserModel)
	if !m.loading {
		t.Error("expected loading during delete")
	}
	if cmd == nil {
		t.Fatal("expected a delete command")
	}
}

func TestBrowserOperationResultRefreshes(t *testing.T) {
	m := newTestBrowser(t, newFakeService())

	result, cmd := m.Update(operationResultMsg{Operation: "delete", Success: true, Message: "Deleted"})
	m = result.(BrowserModel)

	if m.message != "Deleted" || m.messageIsError {
		t.Errorf("unexpected message state: %q err=%v", m.message, m.messageIsError)
	}
	if cmd == nil {
		t.Error("successful mutation must trigger a listing refresh")
	}
}

func TestBuildPickerRowsFiltersIllegalMoveTargets(t *testing.T) {
	m := newTestBrowser(t, newFakeService())
	source := api.Entry{ID: 1, Identity: "docs", Name: "docs"}
	m.moveSource = &source

	nodes := []nav.TreeNode{
		{ID: 1, Identity: "docs", Name: "docs", Depth: 0},
		{ID: 2, Identity: "media", Name: "media", Depth: 0},
		{ID: 0, Identity: "limbo", Name: "limbo", Depth: 0},
	}
	rows := m.buildPickerRows(StateMovePicker, nodes)

	for _, row := range rows {
		if row.Segment.Identity == "docs" {
			t.Error("move picker must exclude the source folder")
		}
		if row.Segment.Identity == "limbo" {
			t.Error("move picker must exclude folders with unresolved ids")
		}
		if row.IsRoot {
			t.Error("root target only offered when below the root")
		}
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 legal target, got %d", len(rows))
	}
}

func TestBuildPickerRowsUploadNeverOffersRoot(t *testing.T) {
	m := newTestBrowser(t, newFakeService())

	nodes := []nav.TreeNode{{ID: 1, Identity: "docs", Name: "docs"}}
	rows := m.buildPickerRows(StateUploadPicker, nodes)
	for _, row := range rows {
		if row.IsRoot {
			t.Error("upload picker must never offer the root")
		}
	}
}

func TestBrowserOfficePreviewIsDownloadHint(t *testing.T) {
	svc := newFakeService()
	m := newTestBrowser(t, svc)

	// Enter docs, select the .pptx file.
	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(BrowserModel)
	entries, total, _ := svc.ListEntries(context.Background(), "docs", 1, 200)
	result, _ = m.Update(listingResultMsg{Epoch: m.listing.Epoch(), Entries: entries, Total: total})
	m = result.(BrowserModel)

	result, _ = m.Update(keyRune('G'))
	m = result.(BrowserModel)
	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(BrowserModel)

	if m.state != StatePreview {
		t.Fatalf("expected preview state, got %s", m.state)
	}
	if m.loading {
		t.Error("office preview must not fetch anything")
	}
	if !strings.Contains(m.previewContent, "download") {
		t.Errorf("expected download hint, got %q", m.previewContent)
	}
	if m.previewHolder.Current() != nil {
		t.Error("office preview must not stage a resource")
	}
}

func TestBrowserPreviewCloseReleasesResource(t *testing.T) {
	svc := newFakeService()
	m := newTestBrowser(t, svc)

	entry := api.Entry{Identity: "file-a", RepositoryIdentity: "repo-a", Name: "a", Ext: ".md"}
	msg := m.previewCmd(entry)()
	pm, ok := msg.(previewResultMsg)
	if !ok || pm.Err != nil {
		t.Fatalf("preview command failed: %v", msg)
	}

	result, _ := m.Update(pm)
	m = result.(BrowserModel)
	if m.state != StatePreview {
		t.Fatalf("expected preview state, got %s", m.state)
	}
	if m.previewHolder.Current() == nil {
		t.Fatal("expected a staged resource")
	}

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = result.(BrowserModel)
	if m.previewHolder.Current() != nil {
		t.Error("closing the preview must release the resource")
	}
}

func TestBrowserFilterNarrowsRows(t *testing.T) {
	m := newTestBrowser(t, newFakeService())

	result, _ := m.Update(keyRune('/'))
	m = result.(BrowserModel)
	if !m.filterActive {
		t.Fatal("expected filter mode")
	}

	result, _ = m.Update(keyRune('d'))
	m = result.(BrowserModel)
	result, _ = m.Update(keyRune('c'))
	m = result.(BrowserModel)

	if len(m.rows) != 1 || m.rows[0].Name != "docs" {
		t.Errorf("expected fuzzy match on docs, got %v", m.rows)
	}

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = result.(BrowserModel)
	if len(m.rows) != 2 {
		t.Errorf("expected full listing after clearing filter, got %d rows", len(m.rows))
	}
}

func TestConfirmDefaultsToNo(t *testing.T) {
	m := newConfirmModel("Delete everything?")
	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cm := result.(confirmModel)
	if cm.result.Confirmed {
		t.Error("enter on the default selection must not confirm a destructive action")
	}
}
