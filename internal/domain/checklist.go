package domain

import "strings"

// ChecklistState is a user-editable to-do list seeded from a curated
// template. Items and Done are parallel slices and stay the same length
// through every mutation.
type ChecklistState struct {
	Items []string
	Done  []bool

	// deleted is the session-only undo stack, most recent deletion first.
	// It is never persisted; a restart loses undo capability.
	deleted []DeletedItem
}

// DeletedItem records enough about a removed entry to reinsert it.
type DeletedItem struct {
	Text          string
	WasDone       bool
	OriginalIndex int
}

// LoadOrInitialize reconciles a persisted checklist against the current
// template. The persisted state survives only when its items match the
// template pairwise; any structural drift resets to the template defaults,
// discarding custom edits. Template edits upstream always win.
func LoadOrInitialize(template []string, persisted *ChecklistState) *ChecklistState {
	if persisted != nil && itemsEqual(persisted.Items, template) {
		persisted.deleted = nil
		return persisted
	}
	return &ChecklistState{
		Items: append([]string(nil), template...),
		Done:  make([]bool, len(template)),
	}
}

func itemsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Toggle flips the completion flag at index. An out-of-range index is a
// programming error; callers validate user input before reaching here.
func (s *ChecklistState) Toggle(index int) {
	s.Done[index] = !s.Done[index]
}

// AddItem appends a new unchecked entry. Whitespace-only text is ignored.
func (s *ChecklistState) AddItem(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.Items = append(s.Items, text)
	s.Done = append(s.Done, false)
}

// RemoveItem deletes the entry at index and pushes it onto the front of the
// undo stack so the most recent deletion is undone first.
func (s *ChecklistState) RemoveItem(index int) {
	record := DeletedItem{
		Text:          s.Items[index],
		WasDone:       s.Done[index],
		OriginalIndex: index,
	}
	s.deleted = append([]DeletedItem{record}, s.deleted...)
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
	s.Done = append(s.Done[:index], s.Done[index+1:]...)
}

// UndoDelete reinserts the most recently removed entry. The insert position
// clamps to the current length, so an item whose slot disappeared reappears
// at the tail instead of erroring. No-op when nothing has been deleted.
func (s *ChecklistState) UndoDelete() bool {
	if len(s.deleted) == 0 {
		return false
	}
	record := s.deleted[0]
	s.deleted = s.deleted[1:]

	at := record.OriginalIndex
	if at > len(s.Items) {
		at = len(s.Items)
	}
	s.Items = append(s.Items[:at], append([]string{record.Text}, s.Items[at:]...)...)
	s.Done = append(s.Done[:at], append([]bool{record.WasDone}, s.Done[at:]...)...)
	return true
}

// RestoreOriginal discards all edits and completion state, returning to the
// template defaults. Destructive; the API layer requires explicit
// confirmation before calling it.
func (s *ChecklistState) RestoreOriginal(template []string) {
	s.Items = append([]string(nil), template...)
	s.Done = make([]bool, len(template))
	s.deleted = nil
}

// UndoDepth reports how many deletions can still be undone this session.
func (s *ChecklistState) UndoDepth() int {
	return len(s.deleted)
}

// Snapshot copies the state so callers can read it after the owning session
// lock is released.
func (s *ChecklistState) Snapshot() *ChecklistState {
	return &ChecklistState{
		Items:   append([]string(nil), s.Items...),
		Done:    append([]bool(nil), s.Done...),
		deleted: append([]DeletedItem(nil), s.deleted...),
	}
}
