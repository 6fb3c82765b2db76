package service

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
)

// seedJSON is loaded on every start so the registry is never empty.
const seedJSON = `{
 "id": 99,
 "CardType": [
  "Visa",
  "MasterCard",
  "EFTPOS"
 ],
 "TransactionType": [
  "Cheque",
  "Credit"
 ]
}`

// Bootstrap loads the built-in seed terminals and, when path is set, the
// terminals found in that file. It runs once before serving.
func (s *TerminalService) Bootstrap(path string) error {
	var t models.Terminal
	if err := s.store.AddCardType(&t, "Visa"); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := s.store.AddTransactionType(&t, "Credit"); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if _, err := s.AddTerminal(t); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if _, err := s.AddTerminalJSON([]byte(seedJSON)); err != nil {
		log.Errorf("error loading seed terminal from JSON: %s", err)
	}

	if path == "" {
		return nil
	}
	return s.LoadFile(path)
}

// LoadFile adds every terminal in the JSON file at path. The file holds a
// single terminal object or an array of them. Nothing is added unless the
// whole file decodes.
func (s *TerminalService) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bootstrap file: %w", err)
	}

	terminals, err := s.codec.DecodeMany(data)
	if err != nil {
		s.countFailure(err)
		return fmt.Errorf("bootstrap file %s: %w", path, err)
	}

	for _, t := range terminals {
		if _, err := s.AddTerminal(t); err != nil {
			return fmt.Errorf("bootstrap file %s: %w", path, err)
		}
	}
	log.Infof("%d terminals loaded from %s", len(terminals), path)
	return nil
}
