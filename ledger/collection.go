package ledger

import "slices"

type entity[T any] interface {
	*T
	EntityID() string
	Clone() *T
	Equal(*T) bool
}

// collection is an ordered list of entities with an id index.
type collection[T any, P entity[T]] struct {
	items []P
	index map[string]int
}

func (c *collection[T, P]) reindex(from int) {
	if c.index == nil {
		c.index = make(map[string]int, len(c.items))
	}
	for i := from; i < len(c.items); i++ {
		c.index[c.items[i].EntityID()] = i
	}
}

func (c *collection[T, P]) position(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

func (c *collection[T, P]) get(id string) P {
	if i, ok := c.index[id]; ok {
		return c.items[i]
	}
	return nil
}

func (c *collection[T, P]) all() []P { return slices.Clone(c.items) }

func (c *collection[T, P]) len() int { return len(c.items) }

// insert places p at index at, or appends when at is out of range.
func (c *collection[T, P]) insert(p P, at int) {
	if at < 0 || at > len(c.items) {
		at = len(c.items)
	}
	c.items = slices.Insert(c.items, at, p)
	c.reindex(at)
}

func (c *collection[T, P]) replace(p P) bool {
	i, ok := c.index[p.EntityID()]
	if !ok {
		return false
	}
	c.items[i] = p
	return true
}

func (c *collection[T, P]) remove(id string) (P, int) {
	i, ok := c.index[id]
	if !ok {
		return nil, -1
	}
	p := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	delete(c.index, id)
	c.reindex(i)
	return p, i
}

func (c *collection[T, P]) clone() collection[T, P] {
	out := collection[T, P]{items: make([]P, len(c.items))}
	for i, p := range c.items {
		out.items[i] = P(p.Clone())
	}
	out.reindex(0)
	return out
}

func (c *collection[T, P]) equal(o *collection[T, P]) bool {
	return slices.EqualFunc(c.items, o.items, func(a, b P) bool { return a.Equal(b) })
}

func (c *collection[T, P]) positions() map[string]int {
	out := make(map[string]int, len(c.index))
	for id, i := range c.index {
		out[id] = i
	}
	return out
}
