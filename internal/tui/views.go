package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Frida7771/cloud-dist/internal/preview"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	breadcrumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	folderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("212")).
			Bold(true)

	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	rootTargetStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("141"))
)

// View implements tea.Model.
func (m BrowserModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.loading {
		return m.renderLoadingView()
	}

	switch m.state {
	case StateCreateFolder:
		return m.renderInputView("New folder in "+m.path.Current().Name, m.nameInput.View())
	case StateRename:
		title := "Rename"
		if m.renameTarget != nil {
			title = "Rename " + m.renameTarget.DisplayName()
		}
		return m.renderInputView(title, m.nameInput.View())
	case StateConfirmDelete:
		return m.renderConfirmDeleteView()
	case StateMovePicker:
		title := "Move to..."
		if m.moveSource != nil {
			title = "Move " + m.moveSource.DisplayName() + " to..."
		}
		return m.renderPickerView(title)
	case StateUploadPicker:
		return m.renderPickerView("Upload into...")
	case StateUploadPath:
		return m.renderInputView("Upload to "+m.uploadTarget.Name, m.uploadInput.View())
	case StatePreview:
		return m.renderPreviewView()
	default:
		return m.renderBrowseView()
	}
}

func (m BrowserModel) renderLoadingView() string {
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("Working...") + "\n\n")
	spinner := spinnerFrames[m.spinnerFrame%len(spinnerFrames)]
	sb.WriteString(fmt.Sprintf("  %s %s\n", spinner, m.loadingMessage))
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("ctrl+c to quit"))
	return sb.String()
}

func (m BrowserModel) renderBrowseView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("cloud-dist") + "  ")
	sb.WriteString(breadcrumbStyle.Render(m.path.String()) + "\n\n")

	if m.filterActive {
		sb.WriteString("Filter: " + m.filterInput.View() + "\n\n")
	}

	if len(m.rows) == 0 {
		if m.filterText != "" {
			sb.WriteString(helpStyle.Render("  No matches") + "\n")
		} else if m.listing.Loaded() {
			sb.WriteString(helpStyle.Render("  Empty folder") + "\n")
		}
	}

	start, end := m.scroller.visibleRange()
	for i := start; i < end; i++ {
		entry := m.rows[i]

		var line string
		if entry.IsFolder() {
			line = folderStyle.Render("▸ " + entry.Name + "/")
		} else {
			line = fileStyle.Render("  "+entry.DisplayName()) +
				sizeStyle.Render("  "+humanSize(entry.Size))
		}
		if m.scroller.isSelected(i) {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	if m.message != "" {
		if m.messageIsError {
			sb.WriteString(errorStyle.Render(m.message) + "\n")
		} else {
			sb.WriteString(successStyle.Render(m.message) + "\n")
		}
	}

	help := "enter open • h up • n new folder • u upload • d download • e rename • m move • x delete • / filter • r refresh • q quit"
	sb.WriteString(helpStyle.Render(help))
	return sb.String()
}

func (m BrowserModel) renderInputView(title, input string) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title) + "\n\n")
	sb.WriteString("  " + input + "\n\n")
	sb.WriteString(helpStyle.Render("enter confirm • esc cancel"))
	return sb.String()
}

func (m BrowserModel) renderConfirmDeleteView() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Delete") + "\n\n")
	if m.deleteTarget != nil {
		kind := "file"
		if m.deleteTarget.IsFolder() {
			kind = "folder and everything in it"
		}
		sb.WriteString(fmt.Sprintf("  Delete %s %s?\n\n",
			kind, titleStyle.Render(m.deleteTarget.DisplayName())))
	}
	sb.WriteString(helpStyle.Render("y delete • n/esc cancel"))
	return sb.String()
}

func (m BrowserModel) renderPickerView(title string) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title) + "\n\n")

	start, end := m.pickerScroller.visibleRange()
	for i := start; i < end; i++ {
		row := m.pickerRows[i]

		var line string
		if row.IsRoot {
			line = rootTargetStyle.Render(row.Segment.Name + " (top level)")
		} else {
			line = strings.Repeat("  ", row.Depth) + folderStyle.Render("▸ "+row.Segment.Name)
		}
		if m.pickerScroller.isSelected(i) {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter select • j/k move • esc cancel"))
	return sb.String()
}

func (m BrowserModel) renderPreviewView() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Preview: "+m.previewEntry.DisplayName()) + "\n\n")

	lines := strings.Split(m.previewContent, "\n")
	visible := m.height - 6
	if visible < 5 {
		visible = 5
	}
	offset := m.previewScroll
	if offset > len(lines)-1 {
		offset = len(lines) - 1
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + visible
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[offset:end] {
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	class := preview.Classify(m.previewEntry.Ext)
	sb.WriteString(helpStyle.Render(fmt.Sprintf("%s • j/k scroll • esc close", class)))
	return sb.String()
}
