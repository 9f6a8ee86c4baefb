// Package tui holds the interactive namespace browser and its prompts.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/history"
	"github.com/Frida7771/cloud-dist/internal/logging"
	"github.com/Frida7771/cloud-dist/internal/nav"
	"github.com/Frida7771/cloud-dist/internal/preview"
)

// Service is the remote surface the browser drives.
type Service interface {
	nav.Client
	Download(ctx context.Context, repositoryIdentity string) (io.ReadCloser, string, int64, error)
}

// BrowserState represents the current mode of the namespace browser.
type BrowserState int

const (
	StateBrowse        BrowserState = iota // Navigating the folder listing
	StateCreateFolder                      // Entering a new folder name
	StateRename                            // Editing an entry's name
	StateConfirmDelete                     // Confirming a delete
	StateMovePicker                        // Choosing a move target folder
	StateUploadPicker                      // Choosing an upload target folder
	StateUploadPath                        // Entering a local file path to upload
	StatePreview                           // Viewing a staged preview
)

// String returns the string representation of the state.
func (s BrowserState) String() string {
	switch s {
	case StateBrowse:
		return "Browse"
	case StateCreateFolder:
		return "New Folder"
	case StateRename:
		return "Rename"
	case StateConfirmDelete:
		return "Delete Confirm"
	case StateMovePicker:
		return "Move Target"
	case StateUploadPicker:
		return "Upload Target"
	case StateUploadPath:
		return "Upload File"
	case StatePreview:
		return "Preview"
	default:
		return "Unknown"
	}
}

// listingResultMsg carries a completed folder fetch, tagged with the epoch it
// was issued for so stale results can be discarded.
type listingResultMsg struct {
	Epoch   uint64
	Entries []api.Entry
	Total   int64
	Err     error
}

// pickerResultMsg carries a synthesized folder tree for a target picker.
type pickerResultMsg struct {
	Purpose BrowserState // StateMovePicker or StateUploadPicker
	Nodes   []nav.TreeNode
	Err     error
}

// operationResultMsg is sent when an async mutating operation completes.
type operationResultMsg struct {
	Operation string // "create", "rename", "move", "delete", "upload", "download"
	Success   bool
	Message   string
}

// previewResultMsg carries a staged preview. Resource is nil for classes
// with no inline rendering; Content holds the text to display either way.
type previewResultMsg struct {
	Entry    api.Entry
	Resource *preview.Resource
	Content  string
	Err      error
}

// spinnerTickMsg animates the loading spinner.
type spinnerTickMsg struct{}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// maxPreviewBytes caps how much of a text file is read for inline display.
const maxPreviewBytes = 256 * 1024

// BrowserResult reports how the browser session ended.
type BrowserResult struct {
	Aborted bool
}

// pickerRow is one selectable line of a target picker.
type pickerRow struct {
	Segment nav.Segment
	Depth   int
	IsRoot  bool
}

// BrowserModel is the interactive namespace browser.
type BrowserModel struct {
	client   Service
	store    *history.Store // nil when history is disabled
	path     *nav.Path
	listing  *nav.Listing
	pageSize int

	state  BrowserState
	width  int
	height int

	rows     []api.Entry // filtered display rows, folders first
	scroller *scroller

	message        string
	messageIsError bool

	loading        bool
	loadingMessage string
	spinnerFrame   int

	// Prompt state
	nameInput    textinput.Model
	renameTarget *api.Entry
	deleteTarget *api.Entry

	// Picker state
	moveSource     *api.Entry
	pickerRows     []pickerRow
	pickerScroller *scroller
	uploadTarget   nav.Segment
	uploadInput    textinput.Model

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterText   string

	// Preview state
	previewHolder  preview.Holder
	previewEntry   api.Entry
	previewContent string
	previewScroll  int

	result BrowserResult
}

// NewBrowser creates a browser positioned at the namespace root. store may
// be nil.
func NewBrowser(client Service, pageSize int, store *history.Store) BrowserModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "name"
	nameInput.CharLimit = 128
	nameInput.Width = 40

	uploadInput := textinput.New()
	uploadInput.Placeholder = "/path/to/local/file"
	uploadInput.CharLimit = 512
	uploadInput.Width = 60

	filterInput := textinput.New()
	filterInput.Placeholder = "filter..."
	filterInput.CharLimit = 64
	filterInput.Width = 30

	return BrowserModel{
		client:         client,
		store:          store,
		path:           nav.NewPath(),
		listing:        &nav.Listing{},
		pageSize:       pageSize,
		state:          StateBrowse,
		scroller:       newScroller(0, 20),
		pickerScroller: newScroller(0, 20),
		nameInput:      nameInput,
		uploadInput:    uploadInput,
		filterInput:    filterInput,
	}
}

// Result returns the session outcome; valid after the program exits.
func (m BrowserModel) Result() BrowserResult { return m.result }

// Init implements tea.Model.
func (m BrowserModel) Init() tea.Cmd {
	identity := m.path.Current().Identity
	epoch := m.listing.Begin()
	return tea.Batch(m.refreshCmd(identity, epoch), m.spinnerTick())
}

// Update implements tea.Model.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		visible := msg.Height - 8
		if visible < 5 {
			visible = 5
		}
		m.scroller.setHeight(visible)
		m.pickerScroller.setHeight(visible)
		return m, nil

	case listingResultMsg:
		m.loading = false
		m.loadingMessage = ""
		if msg.Err != nil {
			if m.listing.Fail(msg.Epoch) {
				m.message = fmt.Sprintf("Listing failed: %v", msg.Err)
				m.messageIsError = true
				m.rebuildRows()
			}
			return m, nil
		}
		if m.listing.Apply(msg.Epoch, msg.Entries, msg.Total) {
			m.rebuildRows()
		}
		return m, nil

	case pickerResultMsg:
		m.loading = false
		m.loadingMessage = ""
		if msg.Err != nil {
			m.message = fmt.Sprintf("Loading folders failed: %v", msg.Err)
			m.messageIsError = true
			m.moveSource = nil
			return m, nil
		}
		m.pickerRows = m.buildPickerRows(msg.Purpose, msg.Nodes)
		m.pickerScroller.moveToTop()
		m.pickerScroller.setLength(len(m.pickerRows))
		if len(m.pickerRows) == 0 {
			m.message = "No valid target folders"
			m.messageIsError = true
			m.moveSource = nil
			return m, nil
		}
		m.state = msg.Purpose
		return m, nil

	case operationResultMsg:
		m.loading = false
		m.loadingMessage = ""
		m.message = msg.Message
		m.messageIsError = !msg.Success
		m.state = StateBrowse
		m.renameTarget = nil
		m.deleteTarget = nil
		m.moveSource = nil
		if msg.Success && msg.Operation != "download" {
			identity := m.path.Current().Identity
			epoch := m.listing.Begin()
			return m, m.refreshCmd(identity, epoch)
		}
		return m, nil

	case previewResultMsg:
		m.loading = false
		m.loadingMessage = ""
		if msg.Err != nil {
			m.message = fmt.Sprintf("Preview failed: %v", msg.Err)
			m.messageIsError = true
			return m, nil
		}
		m.previewHolder.Set(msg.Resource)
		m.previewEntry = msg.Entry
		m.previewContent = msg.Content
		m.previewScroll = 0
		m.state = StatePreview
		return m, nil

	case spinnerTickMsg:
		if m.loading {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			return m, m.spinnerTick()
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			if msg.String() == "ctrl+c" {
				return m.quit()
			}
			return m, nil
		}
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m BrowserModel) quit() (tea.Model, tea.Cmd) {
	m.previewHolder.Close()
	m.result.Aborted = true
	return m, tea.Quit
}

// handleKeyPress dispatches keyboard input by state.
func (m BrowserModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateBrowse:
		return m.handleBrowseKeys(msg)
	case StateCreateFolder, StateRename:
		return m.handleNameInputKeys(msg)
	case StateConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case StateMovePicker, StateUploadPicker:
		return m.handlePickerKeys(msg)
	case StateUploadPath:
		return m.handleUploadPathKeys(msg)
	case StatePreview:
		return m.handlePreviewKeys(msg)
	default:
		return m, nil
	}
}

func (m BrowserModel) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		return m.handleFilterKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()

	case "/":
		m.filterActive = true
		m.filterInput.SetValue("")
		m.filterText = ""
		return m, m.filterInput.Focus()

	case "j", "down":
		m.scroller.moveDown()
		return m, nil

	case "k", "up":
		m.scroller.moveUp()
		return m, nil

	case "g":
		m.scroller.moveToTop()
		return m, nil

	case "G":
		m.scroller.moveToBottom()
		return m, nil

	case "enter", "l", "right":
		entry := m.selectedEntry()
		if entry == nil {
			return m, nil
		}
		if entry.IsFolder() {
			return m.descend(*entry)
		}
		return m.openPreview(*entry)

	case "h", "left", "backspace":
		if m.path.AtRoot() {
			return m, nil
		}
		m.clearFilter()
		m.path.JumpTo(m.path.Depth() - 1)
		return m.startRefresh("Loading " + m.path.Current().Name + "...")

	case "~":
		if m.path.AtRoot() {
			return m, nil
		}
		m.clearFilter()
		m.path.ResetToRoot()
		return m.startRefresh("Loading " + nav.RootName + "...")

	case "r":
		return m.startRefresh("Refreshing...")

	case "n":
		m.state = StateCreateFolder
		m.nameInput.SetValue("")
		m.nameInput.Placeholder = "folder name"
		return m, m.nameInput.Focus()

	case "e":
		entry := m.selectedEntry()
		if entry == nil {
			return m, nil
		}
		m.renameTarget = entry
		m.state = StateRename
		m.nameInput.SetValue(entry.Name)
		m.nameInput.Placeholder = "new name"
		m.nameInput.CursorEnd()
		return m, m.nameInput.Focus()

	case "x":
		entry := m.selectedEntry()
		if entry == nil {
			return m, nil
		}
		m.deleteTarget = entry
		m.state = StateConfirmDelete
		return m, nil

	case "m":
		entry := m.selectedEntry()
		if entry == nil {
			return m, nil
		}
		m.moveSource = entry
		return m.openPicker(StateMovePicker)

	case "u":
		return m.openPicker(StateUploadPicker)

	case "d":
		entry := m.selectedEntry()
		if entry == nil || entry.IsFolder() {
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Downloading " + entry.DisplayName() + "..."
		return m, tea.Batch(m.downloadCmd(*entry), m.spinnerTick())
	}
	return m, nil
}

func (m BrowserModel) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		m.clearFilter()
		m.rebuildRows()
		return m, nil

	case "enter":
		m.filterActive = false
		m.filterInput.Blur()
		return m, nil

	case "up", "down":
		if msg.String() == "up" {
			m.scroller.moveUp()
		} else {
			m.scroller.moveDown()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filterText = m.filterInput.Value()
	m.rebuildRows()
	return m, cmd
}

func (m BrowserModel) handleNameInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		m.state = StateBrowse
		m.renameTarget = nil
		m.nameInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.nameInput.Value())
		m.nameInput.Blur()

		if m.state == StateRename {
			target := m.renameTarget
			m.renameTarget = nil
			m.state = StateBrowse
			// An empty or unchanged buffer ends the edit without a call.
			if target == nil || value == "" || value == target.Name {
				return m, nil
			}
			m.loading = true
			m.loadingMessage = "Renaming..."
			return m, tea.Batch(m.renameCmd(*target, value), m.spinnerTick())
		}

		m.state = StateBrowse
		if value == "" {
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Creating folder..."
		return m, tea.Batch(m.createFolderCmd(m.path.Current().ID, value), m.spinnerTick())
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m BrowserModel) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc", "n", "N":
		m.state = StateBrowse
		m.deleteTarget = nil
		return m, nil

	case "y", "Y", "enter":
		target := m.deleteTarget
		m.deleteTarget = nil
		if target == nil {
			m.state = StateBrowse
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Deleting " + target.DisplayName() + "..."
		return m, tea.Batch(m.deleteCmd(*target), m.spinnerTick())
	}
	return m, nil
}

func (m BrowserModel) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		m.state = StateBrowse
		m.moveSource = nil
		return m, nil

	case "j", "down":
		m.pickerScroller.moveDown()
		return m, nil

	case "k", "up":
		m.pickerScroller.moveUp()
		return m, nil

	case "g":
		m.pickerScroller.moveToTop()
		return m, nil

	case "G":
		m.pickerScroller.moveToBottom()
		return m, nil

	case "enter":
		if m.pickerScroller.selected >= len(m.pickerRows) {
			return m, nil
		}
		row := m.pickerRows[m.pickerScroller.selected]

		if m.state == StateUploadPicker {
			m.uploadTarget = row.Segment
			m.state = StateUploadPath
			m.uploadInput.SetValue("")
			return m, m.uploadInput.Focus()
		}

		source := m.moveSource
		m.moveSource = nil
		m.state = StateBrowse
		if source == nil {
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Moving " + source.DisplayName() + "..."
		return m, tea.Batch(m.moveCmd(*source, row.Segment), m.spinnerTick())
	}
	return m, nil
}

func (m BrowserModel) handleUploadPathKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		m.state = StateBrowse
		m.uploadInput.Blur()
		return m, nil

	case "enter":
		localPath := strings.TrimSpace(m.uploadInput.Value())
		m.uploadInput.Blur()
		m.state = StateBrowse
		if localPath == "" {
			return m, nil
		}
		m.loading = true
		m.loadingMessage = "Uploading " + filepath.Base(localPath) + "..."
		return m, tea.Batch(m.uploadCmd(m.uploadTarget, localPath), m.spinnerTick())
	}

	var cmd tea.Cmd
	m.uploadInput, cmd = m.uploadInput.Update(msg)
	return m, cmd
}

func (m BrowserModel) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc", "q":
		m.previewHolder.Close()
		m.previewContent = ""
		m.state = StateBrowse
		return m, nil

	case "j", "down":
		m.previewScroll++
		return m, nil

	case "k", "up":
		if m.previewScroll > 0 {
			m.previewScroll--
		}
		return m, nil

	case "g":
		m.previewScroll = 0
		return m, nil
	}
	return m, nil
}

// descend enters a folder and starts its listing fetch.
func (m BrowserModel) descend(folder api.Entry) (tea.Model, tea.Cmd) {
	m.clearFilter()
	m.path.Descend(nav.Segment{ID: folder.ID, Identity: folder.Identity, Name: folder.Name})
	return m.startRefresh("Loading " + folder.Name + "...")
}

func (m BrowserModel) startRefresh(message string) (tea.Model, tea.Cmd) {
	identity := m.path.Current().Identity
	epoch := m.listing.Begin()
	m.loading = true
	m.loadingMessage = message
	m.scroller.moveToTop()
	return m, tea.Batch(m.refreshCmd(identity, epoch), m.spinnerTick())
}

func (m BrowserModel) openPicker(purpose BrowserState) (tea.Model, tea.Cmd) {
	m.loading = true
	m.loadingMessage = "Loading folder tree..."
	return m, tea.Batch(m.pickerCmd(purpose, m.path.Segments(), m.moveSource), m.spinnerTick())
}

func (m BrowserModel) openPreview(entry api.Entry) (tea.Model, tea.Cmd) {
	class := preview.Classify(entry.Ext)
	if !class.Inline() && class != preview.ClassImage && class != preview.ClassAudio &&
		class != preview.ClassVideo && class != preview.ClassPDF {
		// Office and unknown types have no preview at all; say so without
		// fetching anything.
		m.previewHolder.Close()
		m.previewEntry = entry
		m.previewContent = fmt.Sprintf("No inline preview for %s files.\nUse d to download it instead.", class)
		m.previewScroll = 0
		m.state = StatePreview
		return m, nil
	}
	m.loading = true
	m.loadingMessage = "Fetching " + entry.DisplayName() + "..."
	return m, tea.Batch(m.previewCmd(entry), m.spinnerTick())
}

// selectedEntry returns the entry under the cursor, or nil.
func (m *BrowserModel) selectedEntry() *api.Entry {
	if m.scroller.selected < 0 || m.scroller.selected >= len(m.rows) {
		return nil
	}
	e := m.rows[m.scroller.selected]
	return &e
}

func (m *BrowserModel) clearFilter() {
	m.filterActive = false
	m.filterText = ""
	m.filterInput.SetValue("")
	m.filterInput.Blur()
}

// rebuildRows recomputes the display list from the listing: folders first,
// files hidden at the root, fuzzy filter applied when active.
func (m *BrowserModel) rebuildRows() {
	folders, files := m.listing.Partition(m.path.AtRoot())
	rows := make([]api.Entry, 0, len(folders)+len(files))
	rows = append(rows, folders...)
	rows = append(rows, files...)

	if m.filterText != "" {
		names := make([]string, len(rows))
		for i, e := range rows {
			names[i] = e.DisplayName()
		}
		matches := fuzzy.Find(m.filterText, names)
		filtered := make([]api.Entry, 0, len(matches))
		for _, match := range matches {
			filtered = append(filtered, rows[match.Index])
		}
		rows = filtered
	}

	m.rows = rows
	m.scroller.setLength(len(rows))
}

// buildPickerRows filters the synthesized tree down to legal targets.
func (m *BrowserModel) buildPickerRows(purpose BrowserState, nodes []nav.TreeNode) []pickerRow {
	var rows []pickerRow

	// Moving may target the root; uploading never can.
	if purpose == StateMovePicker && !m.path.AtRoot() {
		rows = append(rows, pickerRow{Segment: nav.RootSegment(), IsRoot: true})
	}

	for _, node := range nodes {
		if node.ID == 0 {
			// A folder whose numeric id never resolved cannot be addressed
			// as a registration parent.
			continue
		}
		seg := nav.Segment{ID: node.ID, Identity: node.Identity, Name: node.Name}
		if purpose == StateMovePicker {
			if m.moveSource != nil && node.Identity == m.moveSource.Identity {
				continue
			}
			if node.Identity == m.path.Current().Identity {
				continue
			}
		}
		rows = append(rows, pickerRow{Segment: seg, Depth: node.Depth})
	}
	return rows
}

// --- async commands ---

func (m BrowserModel) refreshCmd(identity string, epoch uint64) tea.Cmd {
	client, pageSize := m.client, m.pageSize
	return func() tea.Msg {
		entries, total, err := client.ListEntries(context.Background(), identity, 1, pageSize)
		return listingResultMsg{Epoch: epoch, Entries: entries, Total: total, Err: err}
	}
}

func (m BrowserModel) pickerCmd(purpose BrowserState, breadcrumb []nav.Segment, source *api.Entry) tea.Cmd {
	client, pageSize := m.client, m.pageSize
	return func() tea.Msg {
		ctx := context.Background()
		nodes, err := nav.SynthesizeTree(ctx, client, breadcrumb, pageSize)
		if err != nil {
			return pickerResultMsg{Purpose: purpose, Err: err}
		}
		if purpose == StateMovePicker && source != nil && source.IsFolder() {
			subtree, err := nav.SubtreeIdentities(ctx, client, source.Identity)
			if err != nil {
				return pickerResultMsg{Purpose: purpose, Err: err}
			}
			kept := nodes[:0]
			for _, node := range nodes {
				if !subtree[node.Identity] {
					kept = append(kept, node)
				}
			}
			nodes = kept
		}
		return pickerResultMsg{Purpose: purpose, Nodes: nodes}
	}
}

func (m BrowserModel) createFolderCmd(parentID int64, name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_, err := client.CreateFolder(context.Background(), parentID, name)
		if err != nil {
			if api.IsDuplicateName(err) {
				return operationResultMsg{Operation: "create", Message: fmt.Sprintf("A folder named %q already exists", name)}
			}
			return operationResultMsg{Operation: "create", Message: fmt.Sprintf("Create failed: %v", err)}
		}
		return operationResultMsg{Operation: "create", Success: true, Message: "Created " + name}
	}
}

func (m BrowserModel) renameCmd(entry api.Entry, name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if err := client.Rename(context.Background(), entry.Identity, name); err != nil {
			return operationResultMsg{Operation: "rename", Message: fmt.Sprintf("Rename failed: %v", err)}
		}
		return operationResultMsg{Operation: "rename", Success: true,
			Message: fmt.Sprintf("Renamed %s to %s", entry.Name, name)}
	}
}

func (m BrowserModel) deleteCmd(entry api.Entry) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if err := client.Delete(context.Background(), entry.Identity); err != nil {
			return operationResultMsg{Operation: "delete", Message: fmt.Sprintf("Delete failed: %v", err)}
		}
		return operationResultMsg{Operation: "delete", Success: true, Message: "Deleted " + entry.DisplayName()}
	}
}

func (m BrowserModel) moveCmd(entry api.Entry, target nav.Segment) tea.Cmd {
	client := m.client
	currentParent := m.path.Current().Identity
	return func() tea.Msg {
		err := nav.MoveWorkflow(context.Background(), client, entry, target, currentParent)
		if err != nil {
			return operationResultMsg{Operation: "move", Message: fmt.Sprintf("Move failed: %v", err)}
		}
		return operationResultMsg{Operation: "move", Success: true,
			Message: fmt.Sprintf("Moved %s to %s", entry.DisplayName(), target.Name)}
	}
}

func (m BrowserModel) uploadCmd(target nav.Segment, localPath string) tea.Cmd {
	client, store := m.client, m.store
	return func() tea.Msg {
		f, err := os.Open(localPath)
		if err != nil {
			return operationResultMsg{Operation: "upload", Message: fmt.Sprintf("Upload failed: %v", err)}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return operationResultMsg{Operation: "upload", Message: fmt.Sprintf("Upload failed: %v", err)}
		}

		filename := filepath.Base(localPath)
		outcome, err := nav.UploadWorkflow(context.Background(), client, target, filename, f, info.Size(), nil)
		if err != nil {
			return operationResultMsg{Operation: "upload", Message: fmt.Sprintf("Upload failed: %v", err)}
		}

		if store != nil {
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
			return operationResultMsg{Operation: "upload", Success: true,
				Message: fmt.Sprintf("%s already exists in %s; existing entry kept", filename, target.Name)}
		}
		return operationResultMsg{Operation: "upload", Success: true,
			Message: fmt.Sprintf("Uploaded %s to %s", filename, target.Name)}
	}
}

func (m BrowserModel) downloadCmd(entry api.Entry) tea.Cmd {
	client, store := m.client, m.store
	return func() tea.Msg {
		body, name, _, err := client.Download(context.Background(), entry.RepositoryIdentity)
		if err != nil {
			return operationResultMsg{Operation: "download", Message: fmt.Sprintf("Download failed: %v", err)}
		}
		defer body.Close()

		if name == "" {
			name = entry.DisplayName()
		}
		out, err := os.Create(name)
		if err != nil {
			return operationResultMsg{Operation: "download", Message: fmt.Sprintf("Download failed: %v", err)}
		}
		written, err := io.Copy(out, body)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(name)
			return operationResultMsg{Operation: "download", Message: fmt.Sprintf("Download failed: %v", err)}
		}

		if store != nil {
			if err := store.Add(history.Record{
				Direction:          history.DirectionDownload,
				Name:               entry.DisplayName(),
				RepositoryIdentity: entry.RepositoryIdentity,
				Size:               written,
			}); err != nil {
				logging.Warn("recording download", zap.Error(err))
			}
		}
		return operationResultMsg{Operation: "download", Success: true,
			Message: fmt.Sprintf("Downloaded %s (%s)", name, humanSize(written))}
	}
}

func (m BrowserModel) previewCmd(entry api.Entry) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		body, _, _, err := client.Download(context.Background(), entry.RepositoryIdentity)
		if err != nil {
			return previewResultMsg{Entry: entry, Err: err}
		}
		defer body.Close()

		res, err := preview.Stage(entry.Name, entry.Ext, body)
		if err != nil {
			return previewResultMsg{Entry: entry, Err: err}
		}

		if res.Class.Inline() {
			content, err := readPreviewText(res.Path)
			if err != nil {
				res.Close()
				return previewResultMsg{Entry: entry, Err: err}
			}
			return previewResultMsg{Entry: entry, Resource: res, Content: content}
		}

		content := fmt.Sprintf("%s preview staged at:\n  %s\n\nOpen it with your %s viewer; the file is removed when this preview closes.",
			res.Class, res.Path, res.Class)
		return previewResultMsg{Entry: entry, Resource: res, Content: content}
	}
}

func readPreviewText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPreviewBytes))
	if err != nil {
		return "", err
	}
	content := string(data)
	if len(data) == maxPreviewBytes {
		content += "\n... (truncated)"
	}
	return content, nil
}

func (m BrowserModel) spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Run drives the browser to completion.
func Run(m BrowserModel) (BrowserResult, error) {
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return BrowserResult{}, err
	}
	if fm, ok := final.(BrowserModel); ok {
		return fm.Result(), nil
	}
	return BrowserResult{}, nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
