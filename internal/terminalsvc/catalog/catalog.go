// Package catalog holds the read-only reference tables terminals point to.
// The tables are built once at package init and never change, so lookups
// need no locking.
package catalog

import (
	"fmt"

	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
)

type Entry[ID ~uint32] struct {
	ID   ID
	Name string
}

type Catalog[ID ~uint32] struct {
	entries []Entry[ID]
	byName  map[string]int
	byID    map[ID]int
}

func New[ID ~uint32](entries ...Entry[ID]) *Catalog[ID] {
	c := &Catalog[ID]{
		entries: make([]Entry[ID], 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byID:    make(map[ID]int, len(entries)),
	}
	for _, e := range entries {
		if e.ID == 0 {
			panic(fmt.Sprintf("catalog: entry %q has zero id", e.Name))
		}
		if _, ok := c.byID[e.ID]; ok {
			panic(fmt.Sprintf("catalog: duplicate id %d", e.ID))
		}
		if _, ok := c.byName[e.Name]; ok {
			panic(fmt.Sprintf("catalog: duplicate name %q", e.Name))
		}
		c.byID[e.ID] = len(c.entries)
		c.byName[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// FindByName is an exact, case-sensitive match.
func (c *Catalog[ID]) FindByName(name string) (Entry[ID], bool) {
	i, ok := c.byName[name]
	if !ok {
		return Entry[ID]{}, false
	}
	return c.entries[i], true
}

func (c *Catalog[ID]) FindByID(id ID) (Entry[ID], bool) {
	if id == 0 {
		return Entry[ID]{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Entry[ID]{}, false
	}
	return c.entries[i], true
}

func (c *Catalog[ID]) IsValid(name string) bool {
	_, ok := c.FindByName(name)
	return ok
}

// All returns the entries in declaration order.
func (c *Catalog[ID]) All() []Entry[ID] {
	out := make([]Entry[ID], len(c.entries))
	copy(out, c.entries)
	return out
}

var CardTypes = New(
	Entry[models.CardTypeID]{ID: 1, Name: "Visa"},
	Entry[models.CardTypeID]{ID: 2, Name: "MasterCard"},
	Entry[models.CardTypeID]{ID: 3, Name: "EFTPOS"},
	Entry[models.CardTypeID]{ID: 4, Name: "Amex"},
	Entry[models.CardTypeID]{ID: 5, Name: "JBC"},
)

var TransactionTypes = New(
	Entry[models.TransactionTypeID]{ID: 91, Name: "Cheque"},
	Entry[models.TransactionTypeID]{ID: 92, Name: "Savings"},
	Entry[models.TransactionTypeID]{ID: 93, Name: "Credit"},
	Entry[models.TransactionTypeID]{ID: 94, Name: "Other"},
)
