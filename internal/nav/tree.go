package nav

import (
	"context"

	"github.com/Frida7771/cloud-dist/internal/api"
)

// TreeNode is one synthesized folder in a leveled tree listing. Depth 0 is a
// direct child of the root.
type TreeNode struct {
	ID       int64
	Identity string
	Name     string
	Depth    int
}

// Lister is the file-listing slice of the remote client.
type Lister interface {
	ListEntries(ctx context.Context, identity string, page, size int) ([]api.Entry, int64, error)
}

// FolderLister is the folder-only listing slice of the remote client.
type FolderLister interface {
	ListFolders(ctx context.Context, identity string) ([]api.FolderRef, error)
}

// TreeLister combines the two listings the synthesizer needs: the folder
// listing drives the walk, the file listing back-fills numeric ids.
type TreeLister interface {
	Lister
	FolderLister
}

// SynthesizeTree walks the whole namespace from the root and returns every
// reachable folder, depth-annotated, in a flat list suitable for pickers.
//
// The breadcrumb seeds the list so the folders the user navigated through
// appear even if a concurrent rename or move makes the walk miss them.
// Deduplication is by numeric id, first seen wins; id 0 is excluded from the
// check because it is the root sentinel, never a folder's own id. The walk
// assumes the namespace is acyclic, which holds as long as every move goes
// through MoveEntry's descendant check.
func SynthesizeTree(ctx context.Context, l TreeLister, breadcrumb []Segment, pageSize int) ([]TreeNode, error) {
	var nodes []TreeNode
	seen := make(map[int64]bool)

	for _, seg := range breadcrumb {
		if seg.IsRoot() {
			continue
		}
		nodes = append(nodes, TreeNode{ID: seg.ID, Identity: seg.Identity, Name: seg.Name, Depth: len(nodes)})
		if seg.ID != 0 {
			seen[seg.ID] = true
		}
	}

	if err := walkFolders(ctx, l, "", 0, &nodes, seen, pageSize); err != nil {
		return nil, err
	}
	return nodes, nil
}

func walkFolders(ctx context.Context, l TreeLister, identity string, depth int, nodes *[]TreeNode, seen map[int64]bool, pageSize int) error {
	folders, err := l.ListFolders(ctx, identity)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		return nil
	}

	// Folder-listing rows carry no numeric id; recover each child's id from
	// the parent's file listing when it appears there, else leave it 0.
	ids, err := folderIDs(ctx, l, identity, pageSize)
	if err != nil {
		return err
	}

	for _, f := range folders {
		id := ids[f.Identity]
		if id == 0 || !seen[id] {
			*nodes = append(*nodes, TreeNode{ID: id, Identity: f.Identity, Name: f.Name, Depth: depth})
			if id != 0 {
				seen[id] = true
			}
		}
		if err := walkFolders(ctx, l, f.Identity, depth+1, nodes, seen, pageSize); err != nil {
			return err
		}
	}
	return nil
}

func folderIDs(ctx context.Context, l Lister, identity string, pageSize int) (map[string]int64, error) {
	entries, _, err := l.ListEntries(ctx, identity, 1, pageSize)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(entries))
	for _, e := range entries {
		if e.IsFolder() {
			ids[e.Identity] = e.ID
		}
	}
	return ids, nil
}

// SubtreeIdentities collects the identities of every folder under root
// (exclusive). MoveEntry uses it to reject moving a folder into its own
// subtree, which would disconnect that part of the namespace.
func SubtreeIdentities(ctx context.Context, l FolderLister, root string) (map[string]bool, error) {
	out := make(map[string]bool)
	if err := collectSubtree(ctx, l, root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectSubtree(ctx context.Context, l FolderLister, identity string, out map[string]bool) error {
	folders, err := l.ListFolders(ctx, identity)
	if err != nil {
		return err
	}
	for _, f := range folders {
		if out[f.Identity] {
			continue
		}
		out[f.Identity] = true
		if err := collectSubtree(ctx, l, f.Identity, out); err != nil {
			return err
		}
	}
	return nil
}
