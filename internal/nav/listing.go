package nav

import "github.com/Frida7771/cloud-dist/internal/api"

// Listing holds the current folder's contents. Refreshes are tagged with an
// epoch so a slow fetch issued for a folder the user has since left cannot
// overwrite the listing of the folder they are now in: Begin advances the
// epoch, and only results carrying the latest epoch are applied.
type Listing struct {
	epoch   uint64
	entries []api.Entry
	total   int64
	loaded  bool
}

// Begin marks the start of a refresh and returns its epoch tag. Any refresh
// previously in flight is superseded.
func (l *Listing) Begin() uint64 {
	l.epoch++
	return l.epoch
}

// Epoch returns the current refresh epoch.
func (l *Listing) Epoch() uint64 { return l.epoch }

// Apply installs a refresh result. The entry list is replaced wholesale.
// Results from a superseded epoch are discarded; Apply reports whether the
// result was taken.
func (l *Listing) Apply(epoch uint64, entries []api.Entry, total int64) bool {
	if epoch != l.epoch {
		return false
	}
	l.entries = entries
	l.total = total
	l.loaded = true
	return true
}

// Fail records a refresh failure. The listing is cleared so the display
// never shows another folder's contents under the failed folder's name.
// Failures from a superseded epoch are ignored.
func (l *Listing) Fail(epoch uint64) bool {
	if epoch != l.epoch {
		return false
	}
	l.entries = nil
	l.total = 0
	l.loaded = true
	return true
}

// Loaded reports whether at least one refresh has completed for the current
// epoch, successfully or not.
func (l *Listing) Loaded() bool { return l.loaded }

// Entries returns the raw entry list.
func (l *Listing) Entries() []api.Entry { return l.entries }

// Total returns the server-reported entry count for the folder.
func (l *Listing) Total() int64 { return l.total }

// Partition splits the listing into folders and files for display. At the
// root only folders are shown; files cannot live directly at the root, so
// any that appear are dropped rather than rendered.
func (l *Listing) Partition(atRoot bool) (folders, files []api.Entry) {
	for _, e := range l.entries {
		if e.IsFolder() {
			folders = append(folders, e)
		} else if !atRoot {
			files = append(files, e)
		}
	}
	return folders, files
}
