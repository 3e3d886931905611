package document

import "github.com/robinvdvleuten/moneybook/ledger"

// EventKind tells subscribers what happened.
type EventKind int

const (
	// EventChanged follows every recorded action, undo and redo.
	EventChanged EventKind = iota
	// EventRemoving is sent by undo and redo before entities disappear, while
	// they can still be looked up.
	EventRemoving
	// EventLoaded follows loading a file.
	EventLoaded
	// EventSaved follows saving to a file.
	EventSaved
	// EventRangeChanged follows a change of the view range.
	EventRangeChanged
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventRemoving:
		return "removing"
	case EventLoaded:
		return "loaded"
	case EventSaved:
		return "saved"
	case EventRangeChanged:
		return "range_changed"
	}
	return "unknown"
}

// Event is a document notification.
type Event struct {
	Kind        EventKind
	Description string
	Refs        []ledger.Ref
}

// Subscribe registers fn for every event. The returned function unsubscribes.
// Listeners run synchronously, in no particular order.
func (d *Document) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() { delete(d.listeners, id) }
}

func (d *Document) notify(e Event) {
	for _, fn := range d.listeners {
		fn(e)
	}
}
