// Package nav reconstructs a tree-shaped namespace over the service's flat,
// per-folder listing API: breadcrumb state, the current-folder listing with
// stale-result protection, folder-tree synthesis for pickers, and the
// orchestration of mutating operations.
package nav

import (
	"fmt"
	"strings"
)

// RootName is the display name of the synthetic root segment.
const RootName = "My Files"

// Segment is one element of the breadcrumb stack. It doubles as a folder
// target for move and upload destinations. The zero value is NOT the root;
// use RootSegment for that.
type Segment struct {
	ID       int64
	Identity string
	Name     string
}

// RootSegment returns the sentinel for the namespace root. The service
// reserves numeric id 0 and the empty identity for it.
func RootSegment() Segment {
	return Segment{ID: 0, Identity: "", Name: RootName}
}

// IsRoot reports whether the segment is the root sentinel.
func (s Segment) IsRoot() bool { return s.ID == 0 && s.Identity == "" }

// Path is the breadcrumb stack, root-first and never empty.
type Path struct {
	segments []Segment
}

// NewPath returns a path positioned at the root.
func NewPath() *Path {
	return &Path{segments: []Segment{RootSegment()}}
}

// Descend pushes a folder onto the stack, making it the current folder.
func (p *Path) Descend(seg Segment) {
	p.segments = append(p.segments, seg)
}

// JumpTo truncates the stack so the segment at index becomes current.
// An out-of-range index is a programming error and panics.
func (p *Path) JumpTo(index int) {
	if index < 0 || index >= len(p.segments) {
		panic(fmt.Sprintf("nav: breadcrumb index %d out of range [0,%d)", index, len(p.segments)))
	}
	p.segments = p.segments[:index+1]
}

// ResetToRoot truncates the stack back to the root sentinel.
func (p *Path) ResetToRoot() {
	p.segments = p.segments[:1]
}

// Current returns the folder whose contents are displayed.
func (p *Path) Current() Segment {
	return p.segments[len(p.segments)-1]
}

// AtRoot reports whether the current folder is the root.
func (p *Path) AtRoot() bool { return len(p.segments) == 1 }

// Depth returns how many levels below the root the current folder is.
func (p *Path) Depth() int { return len(p.segments) - 1 }

// Segments returns a copy of the stack, root-first.
func (p *Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// String renders the breadcrumb for display.
func (p *Path) String() string {
	names := make([]string, len(p.segments))
	for i, s := range p.segments {
		names[i] = s.Name
	}
	return strings.Join(names, " / ")
}
