package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/nav"
)

// splitRemotePath splits a slash-separated remote path into components.
// "" and "/" both mean the root.
func splitRemotePath(remotePath string) []string {
	trimmed := strings.Trim(remotePath, "/")
	if trimmed == "" || trimmed == "." {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(trimmed, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// resolveFolder walks a remote path by descending the navigator one named
// component at a time and returns the folder the path names. The navigator
// is left positioned in that folder with its listing loaded, so callers can
// read it without another fetch.
func resolveFolder(ctx context.Context, n *nav.Navigator, remotePath string) (nav.Segment, error) {
	n.ResetToRoot()
	if err := n.Refresh(ctx); err != nil {
		return nav.Segment{}, err
	}
	for _, name := range splitRemotePath(remotePath) {
		entry, ok := findFolder(n.Listing().Entries(), name)
		if !ok {
			return nav.Segment{}, fmt.Errorf("no folder %q in %s", name, n.Path().Current().Name)
		}
		if _, err := n.Descend(entry); err != nil {
			return nav.Segment{}, err
		}
		if err := n.Refresh(ctx); err != nil {
			return nav.Segment{}, err
		}
	}
	return n.Path().Current(), nil
}

// resolveEntry resolves a remote path to its listing entry and the folder
// containing it. The last component may name a file (matched with or without
// extension) or a folder.
func resolveEntry(ctx context.Context, n *nav.Navigator, remotePath string) (api.Entry, nav.Segment, error) {
	parts := splitRemotePath(remotePath)
	if len(parts) == 0 {
		return api.Entry{}, nav.Segment{}, fmt.Errorf("the root cannot be addressed as an entry")
	}

	parent, err := resolveFolder(ctx, n, strings.Join(parts[:len(parts)-1], "/"))
	if err != nil {
		return api.Entry{}, nav.Segment{}, err
	}

	name := parts[len(parts)-1]
	for _, e := range n.Listing().Entries() {
		if e.Name == name || e.DisplayName() == name {
			return e, parent, nil
		}
	}
	return api.Entry{}, nav.Segment{}, fmt.Errorf("no entry %q in %s", name, parent.Name)
}

func findFolder(entries []api.Entry, name string) (api.Entry, bool) {
	for _, e := range entries {
		if e.IsFolder() && e.Name == name {
			return e, true
		}
	}
	return api.Entry{}, false
}
