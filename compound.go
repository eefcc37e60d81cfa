package nbt

import (
	"iter"
	"slices"
)

// Compound maps names to payloads and remembers insertion order.
// It is not safe for concurrent mutation.
type Compound struct {
	entries []compoundEntry
	index   map[string]int
}

type compoundEntry struct {
	name  string
	value Tag
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{}
}

func (*Compound) Type() TagType { return TagCompound }
func (*Compound) isTag()        {}

// Len returns the number of entries.
func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Get returns the payload stored under name.
func (c *Compound) Get(name string) (Tag, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].value, true
}

// Has reports whether name is present.
func (c *Compound) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Set stores v under name. An existing entry keeps its position.
// Set panics if v is nil.
func (c *Compound) Set(name string, v Tag) {
	if v == nil {
		panic("nbt: Compound.Set called with nil tag for " + name)
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].value = v
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, compoundEntry{name: name, value: v})
}

// Remove deletes name and returns the payload it held.
func (c *Compound) Remove(name string) (Tag, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	v := c.entries[i].value
	c.entries = slices.Delete(c.entries, i, i+1)
	delete(c.index, name)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].name] = j
	}
	return v, true
}

// Keys returns the names in insertion order.
func (c *Compound) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.name
	}
	return keys
}

// All iterates entries in insertion order.
func (c *Compound) All() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		if c == nil {
			return
		}
		for _, e := range c.entries {
			if !yield(e.name, e.value) {
				return
			}
		}
	}
}

// Sorted iterates entries in lexical key order.
func (c *Compound) Sorted() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		keys := c.Keys()
		slices.Sort(keys)
		for _, k := range keys {
			if !yield(k, c.entries[c.index[k]].value) {
				return
			}
		}
	}
}

func (c *Compound) ordered(order KeyOrder) iter.Seq2[string, Tag] {
	if order == SortedOrder {
		return c.Sorted()
	}
	return c.All()
}

// Equal reports whether c and o hold equal entries in the same order.
func (c *Compound) Equal(o *Compound) bool {
	if c.Len() != o.Len() {
		return false
	}
	for i := range c.Len() {
		a, b := c.entries[i], o.entries[i]
		if a.name != b.name || !Equal(a.value, b.value) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of c.
func (c *Compound) Clone() *Compound {
	out := &Compound{}
	if c.Len() == 0 {
		return out
	}
	out.entries = make([]compoundEntry, len(c.entries))
	out.index = make(map[string]int, len(c.entries))
	for i, e := range c.entries {
		out.entries[i] = compoundEntry{name: e.name, value: Clone(e.value)}
		out.index[e.name] = i
	}
	return out
}
