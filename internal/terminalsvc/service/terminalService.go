package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/avvvet/terminal-services/internal/comm"
	"github.com/avvvet/terminal-services/internal/terminalsvc/codec"
	"github.com/avvvet/terminal-services/internal/terminalsvc/metrics"
	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
	"github.com/avvvet/terminal-services/internal/terminalsvc/store"
)

// Publisher delivers events to other services. The broker implements it.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

type TerminalService struct {
	store     *store.TerminalStore
	codec     *codec.TerminalCodec
	metrics   *metrics.Metrics
	publisher Publisher
}

// NewTerminalService builds the service; a nil m gets a private metrics
// registry that nothing serves.
func NewTerminalService(store *store.TerminalStore, codec *codec.TerminalCodec, m *metrics.Metrics) *TerminalService {
	if m == nil {
		m = metrics.New()
	}
	return &TerminalService{store: store, codec: codec, metrics: m}
}

// SetPublisher enables terminal.added events. A nil publisher disables them.
func (s *TerminalService) SetPublisher(p Publisher) {
	s.publisher = p
}

func (s *TerminalService) GetTerminal(id models.TerminalID) ([]byte, error) {
	t, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.codec.Encode(t)
}

func (s *TerminalService) ListTerminals() ([]byte, error) {
	return s.codec.EncodeAll()
}

func (s *TerminalService) Count() int {
	return s.store.Len()
}

// AddTerminal stores t and announces it on the terminal.added subject.
func (s *TerminalService) AddTerminal(t models.Terminal) (models.TerminalID, error) {
	id, err := s.store.Add(t)
	if err != nil {
		s.countFailure(err)
		return 0, err
	}
	s.metrics.IncrementTerminalsAdded(s.store.Len())
	log.Infof("terminal %d added", id)

	s.publishAdded(id)
	return id, nil
}

// AddTerminalJSON decodes data and stores the result. Nothing is stored when
// decoding reports an error, even if some references resolved.
func (s *TerminalService) AddTerminalJSON(data []byte) (models.TerminalID, error) {
	t, err := s.codec.Decode(data)
	if err != nil {
		s.countFailure(err)
		return 0, fmt.Errorf("decode terminal: %w", err)
	}
	return s.AddTerminal(t)
}

func (s *TerminalService) publishAdded(id models.TerminalID) {
	if s.publisher == nil {
		return
	}

	t, err := s.store.FindByID(id)
	if err != nil {
		log.Errorf("Error [TerminalService.publishAdded] %s", err)
		return
	}
	data, err := s.codec.Encode(t)
	if err != nil {
		log.Errorf("Error [TerminalService.publishAdded] %s", err)
		return
	}

	payload, err := json.Marshal(comm.TerminalAdded{
		EventID:   uuid.NewString(),
		Terminal:  data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Errorf("Error [TerminalService.publishAdded] %s", err)
		return
	}

	// delivery is best effort, the terminal is already stored
	if err := s.publisher.Publish(comm.SubjectTerminalAdded, payload); err != nil {
		log.Warnf("terminal %d added but event not published: %s", id, err)
	}
}

func (s *TerminalService) countFailure(err error) {
	s.metrics.IncrementAddFailures(FailureReason(err))
}

// FailureReason maps an add or decode error to a metrics label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrMalformed):
		return "malformed"
	case errors.Is(err, models.ErrMissingField):
		return "missing_field"
	case errors.Is(err, models.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, models.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, models.ErrTerminalAssigned):
		return "terminal_assigned"
	default:
		return "unknown"
	}
}
