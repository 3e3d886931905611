package ledger

import (
	"cmp"
	"slices"
)

// Image is a detached copy of one entity, or the record of its absence. Applying
// an image brings the entity back to the captured state, position included.
type Image struct {
	Ref     Ref
	Present bool
	Index   int

	value any
}

// Equal reports whether both images capture the same state.
func (i Image) Equal(o Image) bool {
	if i.Ref != o.Ref || i.Present != o.Present {
		return false
	}
	if !i.Present {
		return true
	}
	if i.Index != o.Index {
		return false
	}
	switch v := i.value.(type) {
	case *Account:
		return v.Equal(o.value.(*Account))
	case *Group:
		return v.Equal(o.value.(*Group))
	case *Transaction:
		return v.Equal(o.value.(*Transaction))
	case *Schedule:
		return v.Equal(o.value.(*Schedule))
	case *Budget:
		return v.Equal(o.value.(*Budget))
	}
	return false
}

// Image captures the current state of the entity ref points at.
func (b *Book) Image(ref Ref) Image {
	switch ref.Kind {
	case KindAccount:
		return imageOf(&b.accounts, ref)
	case KindGroup:
		return imageOf(&b.groups, ref)
	case KindTransaction:
		return imageOf(&b.transactions, ref)
	case KindSchedule:
		return imageOf(&b.schedules, ref)
	case KindBudget:
		return imageOf(&b.budgets, ref)
	}
	return Image{Ref: ref}
}

func imageOf[T any, P entity[T]](c *collection[T, P], ref Ref) Image {
	i, ok := c.position(ref.ID)
	if !ok {
		return Image{Ref: ref}
	}
	return Image{Ref: ref, Present: true, Index: i, value: P(c.items[i].Clone())}
}

// Apply restores every image. All referenced entities are removed first, then the
// present ones are inserted back at their captured index in ascending order, so
// positions come out right regardless of the order of images. Apply doesn't
// notify the watcher.
func (b *Book) Apply(images []Image) {
	for _, img := range images {
		switch img.Ref.Kind {
		case KindAccount:
			b.accounts.remove(img.Ref.ID)
		case KindGroup:
			b.groups.remove(img.Ref.ID)
		case KindTransaction:
			b.transactions.remove(img.Ref.ID)
		case KindSchedule:
			b.schedules.remove(img.Ref.ID)
		case KindBudget:
			b.budgets.remove(img.Ref.ID)
		}
	}

	present := slices.DeleteFunc(slices.Clone(images), func(img Image) bool { return !img.Present })
	slices.SortStableFunc(present, func(a, c Image) int {
		return cmp.Or(cmp.Compare(a.Ref.Kind, c.Ref.Kind), cmp.Compare(a.Index, c.Index))
	})
	for _, img := range present {
		switch v := img.value.(type) {
		case *Account:
			b.accounts.insert(v.Clone(), img.Index)
		case *Group:
			b.groups.insert(v.Clone(), img.Index)
		case *Transaction:
			b.transactions.insert(v.Clone(), img.Index)
		case *Schedule:
			b.schedules.insert(v.Clone(), img.Index)
		case *Budget:
			b.budgets.insert(v.Clone(), img.Index)
		}
	}
}

// Capture collects the prior images of the entities touched by a series of
// mutations. Indexes of all prior images refer to the state before the first
// mutation, even when earlier mutations shifted positions.
type Capture struct {
	book   *Book
	orders map[Kind]map[string]int
	images map[Ref]Image
	refs   []Ref
}

// Capture starts collecting prior images. Call Add with every ref before it is
// mutated, typically from a Watch callback.
func (b *Book) Capture() *Capture {
	return &Capture{
		book:   b,
		orders: make(map[Kind]map[string]int),
		images: make(map[Ref]Image),
	}
}

// Add records the current image of ref unless it was recorded already.
func (c *Capture) Add(ref Ref) {
	if _, ok := c.images[ref]; ok {
		return
	}
	if _, ok := c.orders[ref.Kind]; !ok {
		c.orders[ref.Kind] = c.book.positions(ref.Kind)
	}
	img := c.book.Image(ref)
	if img.Present {
		img.Index = c.orders[ref.Kind][ref.ID]
	}
	c.images[ref] = img
	c.refs = append(c.refs, ref)
}

// Refs returns the recorded refs in the order they were first added.
func (c *Capture) Refs() []Ref { return slices.Clone(c.refs) }

// Images returns the prior images in the order they were first added.
func (c *Capture) Images() []Image {
	out := make([]Image, len(c.refs))
	for i, ref := range c.refs {
		out[i] = c.images[ref]
	}
	return out
}

// Current returns the present images of refs, all taken now.
func (b *Book) Current(refs []Ref) []Image {
	out := make([]Image, len(refs))
	for i, ref := range refs {
		out[i] = b.Image(ref)
	}
	return out
}

func (b *Book) positions(kind Kind) map[string]int {
	switch kind {
	case KindAccount:
		return b.accounts.positions()
	case KindGroup:
		return b.groups.positions()
	case KindTransaction:
		return b.transactions.positions()
	case KindSchedule:
		return b.schedules.positions()
	case KindBudget:
		return b.budgets.positions()
	}
	return nil
}
