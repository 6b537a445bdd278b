package nav

const maxHistory = 50

// Visible rows per scrollable section.
const (
	BlockViewport    = 10
	TransferViewport = 4
	LogViewport      = 3
)

// State owns the current screen and the bounded back history. All
// methods run on the update goroutine; completed fetches must be
// applied through Push/SetError only, so a render never observes a
// half-replaced screen.
type State struct {
	current Screen
	history []Screen
}

func NewState() *State {
	return &State{current: &HomeScreen{}}
}

func (s *State) Current() Screen {
	return s.current
}

func (s *State) HistoryDepth() int {
	return len(s.history)
}

// Push replaces the current screen, recording it in history first.
// Home is never recorded; Loading is replaced in place since its
// predecessor was recorded when loading began.
func (s *State) Push(next Screen) {
	if k := s.current.Kind(); k != KindHome && k != KindLoading {
		s.pushHistory(s.current)
	}
	resetView(next)
	s.current = next
}

// SetLoading shows the in-flight placeholder. The screen being covered
// is recorded when it is a result screen.
func (s *State) SetLoading(message string) {
	s.recordResultScreen()
	s.current = &LoadingScreen{Message: message}
}

// SetError shows a fetch failure; recoverable via GoBack or a new query.
func (s *State) SetError(message string) {
	s.recordResultScreen()
	s.current = &ErrorScreen{Message: message}
}

func (s *State) recordResultScreen() {
	switch s.current.Kind() {
	case KindHome, KindLoading, KindError:
	default:
		s.pushHistory(s.current)
	}
}

func (s *State) pushHistory(scr Screen) {
	s.history = append(s.history, scr)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
}

// GoBack pops history into the current screen. Cursor and scroll of
// the restored screen reset since its underlying data may be stale.
// With empty history this is a no-op.
func (s *State) GoBack() {
	if len(s.history) == 0 {
		return
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	resetView(last)
	s.current = last
}

// GoHome clears history and returns to the home screen.
func (s *State) GoHome() {
	s.history = s.history[:0]
	s.current = &HomeScreen{}
}

// LinkCount is the number of navigable targets on the current screen.
func (s *State) LinkCount() int {
	return len(screenLinks(s.current))
}

// Cursor is the selected link index, pinned to 0 when there are no links.
func (s *State) Cursor() int {
	switch v := s.current.(type) {
	case *BlockScreen:
		return v.Cursor
	case *TxScreen:
		return v.Cursor
	case *AddressScreen:
		return v.Cursor
	default:
		return 0
	}
}

func (s *State) setCursor(c int) {
	switch v := s.current.(type) {
	case *BlockScreen:
		v.Cursor = c
	case *TxScreen:
		v.Cursor = c
	case *AddressScreen:
		v.Cursor = c
	}
}

// NextLink moves the cursor down with modular wraparound.
func (s *State) NextLink() {
	n := s.LinkCount()
	if n == 0 {
		return
	}
	s.setCursor((s.Cursor() + 1) % n)
	s.followCursor()
}

// PrevLink moves the cursor up with modular wraparound.
func (s *State) PrevLink() {
	n := s.LinkCount()
	if n == 0 {
		return
	}
	s.setCursor((s.Cursor() - 1 + n) % n)
	s.followCursor()
}

// ResolveSelectedLink maps the cursor to a concrete target, walking the
// same enumeration LinkCount counts. Empty exactly when LinkCount is 0.
func (s *State) ResolveSelectedLink() (NavLink, bool) {
	links := screenLinks(s.current)
	if len(links) == 0 {
		return NavLink{}, false
	}
	c := s.Cursor()
	if c >= len(links) {
		c = len(links) - 1
	}
	return links[c], true
}

// ToggleMode flips a block screen between list and info display,
// resetting cursor and scroll.
func (s *State) ToggleMode() {
	v, ok := s.current.(*BlockScreen)
	if !ok {
		return
	}
	if v.Mode == ModeList {
		v.Mode = ModeInfo
	} else {
		v.Mode = ModeList
	}
	v.Cursor = 0
	v.Scroll = 0
}

// followCursor adjusts the scroll of the section owning the cursor by
// the minimal amount that brings its row into the viewport.
func (s *State) followCursor() {
	switch v := s.current.(type) {
	case *BlockScreen:
		if v.Mode != ModeList {
			return
		}
		v.Scroll = scrollInto(v.Scroll, v.Cursor, len(v.Txs), BlockViewport)
	case *TxScreen:
		idx := v.Cursor - v.fixedLinkCount()
		if idx < 0 {
			return
		}
		if idx < len(v.Info.Transfers) {
			v.TransferScroll = scrollInto(v.TransferScroll, idx, len(v.Info.Transfers), TransferViewport)
			return
		}
		remaining := idx - len(v.Info.Transfers)
		for i, lg := range v.Info.Logs {
			n := addressParamCount(lg)
			if remaining < n {
				v.LogScroll = scrollInto(v.LogScroll, i, len(v.Info.Logs), LogViewport)
				return
			}
			remaining -= n
		}
	}
}

func scrollInto(scroll, row, rows, window int) int {
	if row < scroll {
		scroll = row
	} else if row >= scroll+window {
		scroll = row - window + 1
	}
	if max := rows - window; scroll > max {
		scroll = max
	}
	if scroll < 0 {
		scroll = 0
	}
	return scroll
}

func resetView(scr Screen) {
	switch v := scr.(type) {
	case *BlockScreen:
		v.Cursor = 0
		v.Scroll = 0
	case *TxScreen:
		v.Cursor = 0
		v.TransferScroll = 0
		v.LogScroll = 0
	case *AddressScreen:
		v.Cursor = 0
	}
}
