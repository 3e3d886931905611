// Package undo records reversible actions against a ledger.Book.
//
// An action is a pair of snapshots: the images of every entity it touched before
// the mutation and after it. Undoing applies the first set, redoing the second.
// Entities are captured automatically through the book's watch hook, so
// cascading changes made by an operation are reverted together with it.
package undo

import (
	"context"
	"errors"
	"slices"

	"github.com/robinvdvleuten/moneybook/ledger"
	"github.com/robinvdvleuten/moneybook/telemetry"
	"go.uber.org/zap"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Book is the part of *ledger.Book the log works with.
type Book interface {
	Capture() *ledger.Capture
	Watch(fn func(ledger.Ref)) (stop func())
	Current(refs []ledger.Ref) []ledger.Image
	Apply(images []ledger.Image)
}

// Action is one recorded, reversible mutation.
type Action struct {
	Description string
	Before      []ledger.Image
	After       []ledger.Image

	generation uint64
}

// Generation is a number unique to this action within its log.
func (a *Action) Generation() uint64 { return a.generation }

// Refs returns the entities touched by the action.
func (a *Action) Refs() []ledger.Ref {
	refs := make([]ledger.Ref, len(a.Before))
	for i, img := range a.Before {
		refs[i] = img.Ref
	}
	return refs
}

// removed returns the refs that exist in from but not in to.
func removed(from, to []ledger.Image) []ledger.Ref {
	var refs []ledger.Ref
	for i := range to {
		if from[i].Present && !to[i].Present {
			refs = append(refs, to[i].Ref)
		}
	}
	return refs
}

// Log is a linear undo history.
//
// Actions before the cursor are applied and can be undone, actions after it were
// undone and can be redone. Recording a new action discards the redo branch.
type Log struct {
	book    Book
	actions []*Action
	cursor  int
	gen     uint64

	logger   *zap.Logger
	onRemove func([]ledger.Ref)
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithRemoveHook sets a function called with the entities an undo or redo is
// about to remove, before they are removed.
func WithRemoveHook(fn func([]ledger.Ref)) Option {
	return func(l *Log) { l.onRemove = fn }
}

// New returns an empty log for book.
func New(book Book, opts ...Option) *Log {
	l := &Log{book: book, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record runs mutate and records what it changed as one action.
//
// The entities in affected are captured up front; anything else mutate touches
// is captured on first touch. If mutate fails, every captured entity is
// restored and the error is returned. If mutate leaves everything as it was,
// nothing is recorded. The result reports whether an action was recorded.
func (l *Log) Record(ctx context.Context, description string, affected []ledger.Ref, mutate func() error) (bool, error) {
	timer := telemetry.FromContext(ctx).Start("undo: " + description)
	defer timer.End()

	capture := l.book.Capture()
	for _, ref := range affected {
		capture.Add(ref)
	}

	stop := l.book.Watch(capture.Add)
	err := mutate()
	stop()

	before := capture.Images()
	if err != nil {
		l.book.Apply(before)
		l.logger.Debug("action rolled back",
			zap.String("description", description),
			zap.Error(err))
		return false, err
	}

	after := l.book.Current(capture.Refs())
	if slices.EqualFunc(before, after, ledger.Image.Equal) {
		return false, nil
	}

	l.gen++
	l.actions = append(l.actions[:l.cursor], &Action{
		Description: description,
		Before:      before,
		After:       after,
		generation:  l.gen,
	})
	l.cursor++

	l.logger.Debug("action recorded",
		zap.String("description", description),
		zap.Int("entities", len(before)),
		zap.Uint64("generation", l.gen))
	return true, nil
}

// CanUndo reports whether there is an action to undo.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether there is an action to redo.
func (l *Log) CanRedo() bool { return l.cursor < len(l.actions) }

// UndoDescription returns the description of the action Undo would revert.
func (l *Log) UndoDescription() string {
	if !l.CanUndo() {
		return ""
	}
	return l.actions[l.cursor-1].Description
}

// RedoDescription returns the description of the action Redo would reapply.
func (l *Log) RedoDescription() string {
	if !l.CanRedo() {
		return ""
	}
	return l.actions[l.cursor].Description
}

// Undo reverts the last applied action.
func (l *Log) Undo(ctx context.Context) (*Action, error) {
	if !l.CanUndo() {
		return nil, ErrNothingToUndo
	}
	timer := telemetry.FromContext(ctx).Start("undo")
	defer timer.End()

	a := l.actions[l.cursor-1]
	l.restore(a.After, a.Before)
	l.cursor--

	l.logger.Debug("action undone", zap.String("description", a.Description))
	return a, nil
}

// Redo reapplies the last undone action.
func (l *Log) Redo(ctx context.Context) (*Action, error) {
	if !l.CanRedo() {
		return nil, ErrNothingToRedo
	}
	timer := telemetry.FromContext(ctx).Start("redo")
	defer timer.End()

	a := l.actions[l.cursor]
	l.restore(a.Before, a.After)
	l.cursor++

	l.logger.Debug("action redone", zap.String("description", a.Description))
	return a, nil
}

func (l *Log) restore(from, to []ledger.Image) {
	if l.onRemove != nil {
		if refs := removed(from, to); len(refs) > 0 {
			l.onRemove(refs)
		}
	}
	l.book.Apply(to)
}

// Current returns the last applied action, or nil when everything is undone.
// Comparing it with a value taken earlier tells whether the book moved away
// from that point in history.
func (l *Log) Current() *Action {
	if l.cursor == 0 {
		return nil
	}
	return l.actions[l.cursor-1]
}

// Reset empties the log.
func (l *Log) Reset() {
	l.actions = nil
	l.cursor = 0
}

// Entry describes one action of the history.
type Entry struct {
	Description string `json:"description"`
	Generation  uint64 `json:"generation"`
	Applied     bool   `json:"applied"`
}

// History lists every action, oldest first.
func (l *Log) History() []Entry {
	entries := make([]Entry, len(l.actions))
	for i, a := range l.actions {
		entries[i] = Entry{Description: a.Description, Generation: a.generation, Applied: i < l.cursor}
	}
	return entries
}
