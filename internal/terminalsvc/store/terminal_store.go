package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/avvvet/terminal-services/internal/terminalsvc/catalog"
	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
)

const (
	DefaultMaxTerminals        = 1000
	DefaultMaxCardTypes        = 10
	DefaultMaxTransactionTypes = 5
)

// Limits bounds the registry and the reference lists of each terminal.
// Zero fields fall back to the defaults.
type Limits struct {
	Terminals        int
	CardTypes        int
	TransactionTypes int
}

func (l Limits) withDefaults() Limits {
	if l.Terminals <= 0 {
		l.Terminals = DefaultMaxTerminals
	}
	if l.CardTypes <= 0 {
		l.CardTypes = DefaultMaxCardTypes
	}
	if l.TransactionTypes <= 0 {
		l.TransactionTypes = DefaultMaxTransactionTypes
	}
	return l
}

// TerminalStore is the in-memory terminal registry. A slot is empty when its
// terminal id is 0. Slots grow on demand up to limits.Terminals.
type TerminalStore struct {
	mu     sync.RWMutex
	slots  []models.Terminal
	lastID models.TerminalID
	limits Limits
}

func NewTerminalStore(limits Limits) *TerminalStore {
	return &TerminalStore{limits: limits.withDefaults()}
}

func (s *TerminalStore) Limits() Limits {
	return s.limits
}

func (s *TerminalStore) FindByID(id models.TerminalID) (models.Terminal, error) {
	if id == 0 {
		return models.Terminal{}, models.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.slots {
		if s.slots[i].ID == id {
			return s.slots[i].Clone(), nil
		}
	}
	return models.Terminal{}, models.ErrNotFound
}

// IsValid checks every reference against the catalogs. It does not look at
// the registry.
func (s *TerminalStore) IsValid(t models.Terminal) bool {
	for _, id := range t.CardTypes {
		if _, ok := catalog.CardTypes.FindByID(id); !ok {
			return false
		}
	}
	for _, id := range t.TransactionTypes {
		if _, ok := catalog.TransactionTypes.FindByID(id); !ok {
			return false
		}
	}
	return true
}

// Add stores a copy of t in the first empty slot and returns the id assigned
// to it. t must be new and valid.
func (s *TerminalStore) Add(t models.Terminal) (models.TerminalID, error) {
	if !t.IsNew() {
		return 0, fmt.Errorf("add terminal %d: %w", t.ID, models.ErrTerminalAssigned)
	}
	if !s.IsValid(t) {
		return 0, fmt.Errorf("add terminal: %w", models.ErrInvalidReference)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot := -1
	for i := range s.slots {
		if s.slots[i].ID == 0 {
			slot = i
			break
		}
	}
	if slot == -1 {
		if len(s.slots) >= s.limits.Terminals {
			return 0, fmt.Errorf("add terminal: registry holds %d terminals: %w",
				s.limits.Terminals, models.ErrCapacityExceeded)
		}
		s.slots = append(s.slots, models.Terminal{})
		slot = len(s.slots) - 1
	}

	s.lastID++
	stored := t.Clone()
	stored.ID = s.lastID
	s.slots[slot] = stored

	return stored.ID, nil
}

// All returns every stored terminal in slot order.
func (s *TerminalStore) All() []models.Terminal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Terminal, 0, len(s.slots))
	for i := range s.slots {
		if s.slots[i].ID != 0 {
			out = append(out, s.slots[i].Clone())
		}
	}
	return out
}

func (s *TerminalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for i := range s.slots {
		if s.slots[i].ID != 0 {
			n++
		}
	}
	return n
}

// AddCardType appends the card type called name to t. Adding a card type
// that is already referenced is a no-op.
func (s *TerminalStore) AddCardType(t *models.Terminal, name string) error {
	ct, ok := catalog.CardTypes.FindByName(name)
	if !ok {
		return fmt.Errorf("card type %q: %w", name, models.ErrInvalidReference)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(t.CardTypes, ct.ID) {
		return nil
	}
	if len(t.CardTypes) >= s.limits.CardTypes {
		return fmt.Errorf("card type %q: terminal holds %d card types: %w",
			name, s.limits.CardTypes, models.ErrCapacityExceeded)
	}
	t.CardTypes = append(t.CardTypes, ct.ID)
	return nil
}

func (s *TerminalStore) AddTransactionType(t *models.Terminal, name string) error {
	tt, ok := catalog.TransactionTypes.FindByName(name)
	if !ok {
		return fmt.Errorf("transaction type %q: %w", name, models.ErrInvalidReference)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(t.TransactionTypes, tt.ID) {
		return nil
	}
	if len(t.TransactionTypes) >= s.limits.TransactionTypes {
		return fmt.Errorf("transaction type %q: terminal holds %d transaction types: %w",
			name, s.limits.TransactionTypes, models.ErrCapacityExceeded)
	}
	t.TransactionTypes = append(t.TransactionTypes, tt.ID)
	return nil
}
