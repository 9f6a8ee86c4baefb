package tui

// scroller tracks selection and viewport offset over a list of rows.
type scroller struct {
	selected int
	offset   int
	height   int
	length   int
}

func newScroller(length, height int) *scroller {
	return &scroller{length: length, height: height}
}

// setLength updates the row count and clamps the selection.
func (s *scroller) setLength(length int) {
	s.length = length
	if s.selected >= length {
		s.selected = length - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
	s.ensureVisible()
}

func (s *scroller) setHeight(height int) {
	s.height = height
	s.ensureVisible()
}

func (s *scroller) moveUp() {
	if s.selected > 0 {
		s.selected--
		s.ensureVisible()
	}
}

func (s *scroller) moveDown() {
	if s.selected < s.length-1 {
		s.selected++
		s.ensureVisible()
	}
}

func (s *scroller) moveToTop() {
	s.selected = 0
	s.offset = 0
}

func (s *scroller) moveToBottom() {
	if s.length > 0 {
		s.selected = s.length - 1
		s.ensureVisible()
	}
}

func (s *scroller) ensureVisible() {
	if s.height <= 0 {
		return
	}
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+s.height {
		s.offset = s.selected - s.height + 1
	}
}

// visibleRange returns the half-open row range currently on screen.
func (s *scroller) visibleRange() (start, end int) {
	start = s.offset
	end = s.offset + s.height
	if s.height <= 0 || end > s.length {
		end = s.length
	}
	return start, end
}

func (s *scroller) isSelected(index int) bool { return index == s.selected }
