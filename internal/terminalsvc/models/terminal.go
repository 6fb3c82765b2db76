package models

import "slices"

// TerminalID 0 means the terminal was never stored.
type TerminalID uint32

type Terminal struct {
	ID               TerminalID
	CardTypes        []CardTypeID
	TransactionTypes []TransactionTypeID
}

// IsNew reports whether the terminal has not been assigned an id yet.
func (t Terminal) IsNew() bool {
	return t.ID == 0
}

// Clone returns a copy that shares no memory with t.
func (t Terminal) Clone() Terminal {
	return Terminal{
		ID:               t.ID,
		CardTypes:        slices.Clone(t.CardTypes),
		TransactionTypes: slices.Clone(t.TransactionTypes),
	}
}
