package popstage

import (
	"strings"

	"github.com/google/uuid"
)

// UploadRecord is the accepted audio file awaiting analysis. Records are
// immutable; an accepted drop replaces the whole record.
type UploadRecord struct {
	ID uuid.UUID
	// FileName is the name as dropped; Title is FileName without its last
	// extension, as shown next to the Analyze button.
	FileName  string
	Title     string
	File      File
	Validated bool
}

// DockState drives the CD player's dock-offset animation.
type DockState struct {
	Open bool
}

// ScreenID identifies one of the TV screens showing a channel.
type ScreenID int

// Snapshot is one immutable, versioned state of the application. Consumers
// hold the pointer returned by Store.Current and must not modify it; the
// Channels map in particular is shared between snapshots.
type Snapshot struct {
	Version    uint64
	Upload     *UploadRecord
	Selection  SelectionSet
	Route      RoutePath
	Dock       DockState
	Dragging   bool
	Theme      Theme
	Channels   map[ScreenID]int
	Submitting bool
}

// Channel returns the channel shown on screen, or -1 if unknown.
func (s *Snapshot) Channel(screen ScreenID) int {
	if ch, ok := s.Channels[screen]; ok {
		return ch
	}
	return -1
}

// Store holds the single authoritative snapshot. Every mutation goes through
// a named transition that builds a new snapshot and swaps the reference in
// one assignment, so a reader sees either the old or the new state, never a
// mix. Transitions that change nothing keep the current snapshot and version.
type Store struct {
	current *Snapshot
	subs    handlerList[*Snapshot]
}

// NewStore creates a store whose first snapshot is initial at version 1.
func NewStore(initial Snapshot) *Store {
	s := initial
	s.Version = 1
	if s.Route == "" {
		s.Route = DefaultRoute
	}
	return &Store{current: &s}
}

// Current returns the latest snapshot.
func (s *Store) Current() *Snapshot {
	return s.current
}

// Subscribe registers fn to receive each new snapshot after it is published.
func (s *Store) Subscribe(fn func(*Snapshot)) CallbackHandle {
	return s.subs.add(fn)
}

// transition copies the current snapshot, lets mutate edit the copy and
// publishes it when mutate reports a change.
func (s *Store) transition(mutate func(next *Snapshot) bool) *Snapshot {
	next := *s.current
	if !mutate(&next) {
		return s.current
	}
	next.Version = s.current.Version + 1
	s.current = &next
	s.subs.fire(s.current)
	return s.current
}

// SetDragging records whether a drag session is active.
func (s *Store) SetDragging(active bool) *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if n.Dragging == active {
			return false
		}
		n.Dragging = active
		return true
	})
}

// AcceptUpload replaces the upload record with a validated record for f.
func (s *Store) AcceptUpload(f File) *Snapshot {
	rec := &UploadRecord{
		ID:        uuid.New(),
		FileName:  f.Name,
		Title:     cutExtension(f.Name),
		File:      f,
		Validated: true,
	}
	return s.transition(func(n *Snapshot) bool {
		n.Upload = rec
		return true
	})
}

// ResetUpload clears the upload record.
func (s *Store) ResetUpload() *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if n.Upload == nil {
			return false
		}
		n.Upload = nil
		return true
	})
}

// Navigate records the current route.
func (s *Store) Navigate(p RoutePath) *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if n.Route == p {
			return false
		}
		n.Route = p
		return true
	})
}

// SetDockOpen opens or closes the dock.
func (s *Store) SetDockOpen(open bool) *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if n.Dock.Open == open {
			return false
		}
		n.Dock.Open = open
		return true
	})
}

// PublishSelection stores a copy of the highlight set.
func (s *Store) PublishSelection(sel SelectionSet) *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if n.Selection.Equal(sel) {
			return false
		}
		n.Selection = sel
		return true
	})
}

// SelectChannel sets the channel shown on screen.
func (s *Store) SelectChannel(screen ScreenID, channel int) *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if cur, ok := n.Channels[screen]; ok && cur == channel {
			return false
		}
		chans := make(map[ScreenID]int, len(n.Channels)+1)
		for k, v := range n.Channels {
			chans[k] = v
		}
		chans[screen] = channel
		n.Channels = chans
		return true
	})
}

// SetTheme switches the lighting preset.
func (s *Store) SetTheme(t Theme) *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if n.Theme == t {
			return false
		}
		n.Theme = t
		return true
	})
}

// SetSubmitting records whether an analysis request is in flight.
func (s *Store) SetSubmitting(active bool) *Snapshot {
	return s.transition(func(n *Snapshot) bool {
		if n.Submitting == active {
			return false
		}
		n.Submitting = active
		return true
	})
}

// cutExtension drops the last extension of name. Names without one, and
// dot-files, are returned unchanged.
func cutExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name
	}
	return name[:i]
}
