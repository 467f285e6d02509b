package dashboard

// Overlay is one popup or panel drawn over the main view.
type Overlay uint8

const (
	OverlayMenu Overlay = 1 << iota
	OverlayHistory
	OverlayGallery
	OverlayDeveloper
	OverlayNoteList
	OverlayAddNote
)

// Topmost first; Top and Esc handling follow this order.
var overlayStack = []Overlay{
	OverlayAddNote,
	OverlayNoteList,
	OverlayGallery,
	OverlayHistory,
	OverlayDeveloper,
	OverlayMenu,
}

func (o Overlay) String() string {
	switch o {
	case OverlayMenu:
		return "menu"
	case OverlayHistory:
		return "history"
	case OverlayGallery:
		return "gallery"
	case OverlayDeveloper:
		return "developer"
	case OverlayNoteList:
		return "notes"
	case OverlayAddNote:
		return "add note"
	default:
		return "none"
	}
}

// NoteCollection identifies a rendered list of notes.
type NoteCollection int

const (
	// CityChips are the current city's notes shown in the main view.
	CityChips NoteCollection = iota
	// NoteListItems are the rows of the all-notes overlay.
	NoteListItems
	numCollections
)

// noteFocus is the per-collection transient state. At most one note is
// expanded and at most one is being edited.
type noteFocus struct {
	expanded int64
	editing  int64
	text     string
}

// Overlays tracks open overlays and note editing state. Overlays open and
// close independently, except that opening any overlay closes the menu it
// was launched from. The zero value has everything closed.
//
// Overlays is not safe for concurrent use; it belongs to the UI loop.
type Overlays struct {
	open  Overlay
	focus [numCollections]noteFocus
	// Draft is the add-note input.
	Draft string
}

func (o *Overlays) IsOpen(which Overlay) bool { return o.open&which != 0 }

// Open shows an overlay.
func (o *Overlays) Open(which Overlay) {
	if which != OverlayMenu {
		o.open &^= OverlayMenu
	}
	o.open |= which
}

// Close hides an overlay and drops the transient state that belongs to it.
func (o *Overlays) Close(which Overlay) {
	o.open &^= which
	switch which {
	case OverlayNoteList:
		o.focus[NoteListItems] = noteFocus{}
	case OverlayAddNote:
		o.Draft = ""
	}
}

func (o *Overlays) Toggle(which Overlay) {
	if o.IsOpen(which) {
		o.Close(which)
		return
	}
	o.Open(which)
}

// Top returns the topmost open overlay, or 0 when none is open.
func (o *Overlays) Top() Overlay {
	for _, ov := range overlayStack {
		if o.IsOpen(ov) {
			return ov
		}
	}
	return 0
}

// CloseTop closes the topmost overlay and reports whether one was open.
func (o *Overlays) CloseTop() bool {
	top := o.Top()
	if top == 0 {
		return false
	}
	o.Close(top)
	return true
}

// ClickBackdrop closes only the overlay whose backdrop was clicked.
func (o *Overlays) ClickBackdrop(which Overlay) { o.Close(which) }

// ClickContent handles a click inside an overlay's content. It never
// reaches the backdrop, so nothing closes.
func (o *Overlays) ClickContent(Overlay) {}

// ClickMain handles a click on the main view: the menu closes and an
// expanded city chip collapses.
func (o *Overlays) ClickMain() {
	o.open &^= OverlayMenu
	o.collapse(CityChips)
}

// ToggleChip expands note id in c, collapsing whichever note was expanded
// or being edited there. Toggling the expanded note collapses it.
func (o *Overlays) ToggleChip(c NoteCollection, id int64) {
	if o.focus[c].expanded == id {
		o.collapse(c)
		return
	}
	o.focus[c] = noteFocus{expanded: id}
}

// Expanded returns the expanded note in c, or 0.
func (o *Overlays) Expanded(c NoteCollection) int64 { return o.focus[c].expanded }

// BeginEdit starts editing note id in c with text as the initial value.
// Any other note being edited or expanded in c is closed.
func (o *Overlays) BeginEdit(c NoteCollection, id int64, text string) {
	o.focus[c] = noteFocus{expanded: id, editing: id, text: text}
}

// SetEditText updates the text of the note being edited in c.
func (o *Overlays) SetEditText(c NoteCollection, text string) {
	if o.focus[c].editing != 0 {
		o.focus[c].text = text
	}
}

// Editing returns the note being edited in c.
func (o *Overlays) Editing(c NoteCollection) (id int64, text string, ok bool) {
	f := o.focus[c]
	return f.editing, f.text, f.editing != 0
}

// CancelEdit stops editing in c but leaves the note expanded.
func (o *Overlays) CancelEdit(c NoteCollection) {
	o.focus[c].editing = 0
	o.focus[c].text = ""
}

// ResetCity drops chip state tied to the previous city.
func (o *Overlays) ResetCity() { o.collapse(CityChips) }

func (o *Overlays) collapse(c NoteCollection) { o.focus[c] = noteFocus{} }
