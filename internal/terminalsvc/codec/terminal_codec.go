// Package codec converts terminals to and from their JSON representation.
//
// Terminals are exchanged by reference name, never by catalog id:
//
//	{"id":1,"CardType":["Visa","MasterCard"],"TransactionType":["Credit"]}
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/avvvet/terminal-services/internal/terminalsvc/catalog"
	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
	"github.com/avvvet/terminal-services/internal/terminalsvc/store"
)

const (
	CardTypeField        = "CardType"
	TransactionTypeField = "TransactionType"
)

// terminalJSON fixes the key order of an encoded terminal.
type terminalJSON struct {
	ID               models.TerminalID `json:"id"`
	CardTypes        []string          `json:"CardType"`
	TransactionTypes []string          `json:"TransactionType"`
}

type TerminalCodec struct {
	store *store.TerminalStore
}

func NewTerminalCodec(store *store.TerminalStore) *TerminalCodec {
	return &TerminalCodec{store: store}
}

func (c *TerminalCodec) Encode(t models.Terminal) ([]byte, error) {
	doc, err := c.prepare(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// EncodeAll encodes every stored terminal as a JSON array, in slot order.
func (c *TerminalCodec) EncodeAll() ([]byte, error) {
	terminals := c.store.All()

	docs := make([]terminalJSON, 0, len(terminals))
	for _, t := range terminals {
		doc, err := c.prepare(t)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return json.Marshal(docs)
}

func (c *TerminalCodec) prepare(t models.Terminal) (terminalJSON, error) {
	if !c.store.IsValid(t) {
		return terminalJSON{}, fmt.Errorf("encode terminal %d: %w", t.ID, models.ErrInvalidReference)
	}

	doc := terminalJSON{
		ID:               t.ID,
		CardTypes:        make([]string, 0, len(t.CardTypes)),
		TransactionTypes: make([]string, 0, len(t.TransactionTypes)),
	}
	for _, id := range t.CardTypes {
		ct, _ := catalog.CardTypes.FindByID(id)
		doc.CardTypes = append(doc.CardTypes, ct.Name)
	}
	for _, id := range t.TransactionTypes {
		tt, _ := catalog.TransactionTypes.FindByID(id)
		doc.TransactionTypes = append(doc.TransactionTypes, tt.Name)
	}
	return doc, nil
}

// Decode builds a new terminal from data. The id in the input is ignored.
//
// Every name in both arrays is tried even after one fails to resolve. In that
// case the partially filled terminal is returned together with an error
// wrapping models.ErrInvalidReference; it must not be stored. Elements that are
// not strings are skipped.
func (c *TerminalCodec) Decode(data []byte) (models.Terminal, error) {
	if !utf8.Valid(data) {
		return models.Terminal{}, fmt.Errorf("%w: invalid UTF-8", models.ErrMalformed)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Terminal{}, fmt.Errorf("%w: %v", models.ErrMalformed, err)
	}

	var t models.Terminal
	obj, _ := doc.(map[string]any)

	cardTypes, ok := obj[CardTypeField].([]any)
	if !ok {
		return t, fmt.Errorf("%w: %s", models.ErrMissingField, CardTypeField)
	}
	var errs []error
	for _, v := range cardTypes {
		name, ok := v.(string)
		if !ok {
			continue
		}
		if err := c.store.AddCardType(&t, name); err != nil {
			errs = append(errs, err)
		}
	}

	trxTypes, ok := obj[TransactionTypeField].([]any)
	if !ok {
		return t, fmt.Errorf("%w: %s", models.ErrMissingField, TransactionTypeField)
	}
	for _, v := range trxTypes {
		name, ok := v.(string)
		if !ok {
			continue
		}
		if err := c.store.AddTransactionType(&t, name); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return t, errors.Join(append([]error{models.ErrInvalidReference}, errs...)...)
	}
	return t, nil
}

// DecodeMany accepts a single terminal object or an array of them.
func (c *TerminalCodec) DecodeMany(data []byte) ([]models.Terminal, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		t, err := c.Decode(trimmed)
		if err != nil {
			return nil, err
		}
		return []models.Terminal{t}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformed, err)
	}

	terminals := make([]models.Terminal, 0, len(raw))
	for i, r := range raw {
		t, err := c.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("terminal #%d: %w", i, err)
		}
		terminals = append(terminals, t)
	}
	return terminals, nil
}
