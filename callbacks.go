package popstage

// handlerIDCounter is a plain counter; popstage is single-threaded.
var handlerIDCounter uint32

type handler[T any] struct {
	id uint32
	fn func(T)
}

// handlerList is a copy-on-write callback list. A handler may remove itself
// (or others) while the list is firing; the in-flight fire keeps iterating
// the slice it started with.
type handlerList[T any] struct {
	entries []handler[T]
}

func (l *handlerList[T]) add(fn func(T)) CallbackHandle {
	handlerIDCounter++
	id := handlerIDCounter
	next := make([]handler[T], len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	l.entries = append(next, handler[T]{id: id, fn: fn})
	return CallbackHandle{id: id, remove: l.remove}
}

func (l *handlerList[T]) remove(id uint32) {
	for i := range l.entries {
		if l.entries[i].id == id {
			next := make([]handler[T], 0, len(l.entries)-1)
			next = append(next, l.entries[:i]...)
			l.entries = append(next, l.entries[i+1:]...)
			return
		}
	}
}

func (l *handlerList[T]) fire(v T) {
	for _, h := range l.entries {
		h.fn(v)
	}
}

func (l *handlerList[T]) len() int {
	return len(l.entries)
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id     uint32
	remove func(uint32)
}

// Remove unregisters this callback so it no longer fires. Removing twice,
// or removing the zero handle, is a no-op.
func (h CallbackHandle) Remove() {
	if h.remove == nil {
		return
	}
	h.remove(h.id)
}
