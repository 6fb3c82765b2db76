package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/terminal-services/internal/comm"
	"github.com/avvvet/terminal-services/internal/terminalsvc/codec"
	"github.com/avvvet/terminal-services/internal/terminalsvc/metrics"
	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
	"github.com/avvvet/terminal-services/internal/terminalsvc/store"
)

type publishedMessage struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	messages []publishedMessage
	err      error
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	p.messages = append(p.messages, publishedMessage{topic: topic, payload: payload})
	return p.err
}

func newService(limits store.Limits) (*TerminalService, *metrics.Metrics) {
	st := store.NewTerminalStore(limits)
	m := metrics.New()
	return NewTerminalService(st, codec.NewTerminalCodec(st), m), m
}

func TestAddTerminalJSON(t *testing.T) {
	svc, m := newService(store.Limits{})

	id, err := svc.AddTerminalJSON([]byte(`{"CardType":["Visa","MasterCard"],"TransactionType":["Credit","Savings"]}`))
	require.NoError(t, err)
	assert.Equal(t, models.TerminalID(1), id)

	out, err := svc.GetTerminal(id)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"CardType":["Visa","MasterCard"],"TransactionType":["Credit","Savings"]}`, string(out))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TerminalsAdded))
	assert.Equal(t, 1, svc.Count())
}

func TestAddTerminalJSONDoesNotStorePartialTerminal(t *testing.T) {
	svc, m := newService(store.Limits{})

	_, err := svc.AddTerminalJSON([]byte(`{"CardType":["Visa","bogus"],"TransactionType":["Credit"]}`))
	require.ErrorIs(t, err, models.ErrInvalidReference)
	assert.Equal(t, 0, svc.Count())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AddFailures.WithLabelValues("invalid_reference")))

	out, err := svc.ListTerminals()
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))
}

func TestNilMetrics(t *testing.T) {
	st := store.NewTerminalStore(store.Limits{Terminals: 1})
	svc := NewTerminalService(st, codec.NewTerminalCodec(st), nil)

	require.NotPanics(t, func() {
		_, err := svc.AddTerminal(models.Terminal{})
		require.NoError(t, err)
		_, err = svc.AddTerminal(models.Terminal{})
		require.ErrorIs(t, err, models.ErrCapacityExceeded)
		_, err = svc.AddTerminalJSON([]byte(`{xxx]`))
		require.ErrorIs(t, err, models.ErrMalformed)
	})
}

func TestAddTerminalCapacity(t *testing.T) {
	svc, m := newService(store.Limits{Terminals: 1})

	_, err := svc.AddTerminal(models.Terminal{})
	require.NoError(t, err)
	_, err = svc.AddTerminal(models.Terminal{})
	require.ErrorIs(t, err, models.ErrCapacityExceeded)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AddFailures.WithLabelValues("capacity_exceeded")))
}

func TestGetTerminalNotFound(t *testing.T) {
	svc, _ := newService(store.Limits{})

	_, err := svc.GetTerminal(9876)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.GetTerminal(0)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPublishesTerminalAdded(t *testing.T) {
	svc, _ := newService(store.Limits{})
	pub := &fakePublisher{}
	svc.SetPublisher(pub)

	id, err := svc.AddTerminal(models.Terminal{CardTypes: []models.CardTypeID{4}})
	require.NoError(t, err)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, comm.SubjectTerminalAdded, pub.messages[0].topic)

	var event comm.TerminalAdded
	require.NoError(t, json.Unmarshal(pub.messages[0].payload, &event))
	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.Timestamp.IsZero())
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"CardType":["Amex"],"TransactionType":[]}`, id), string(event.Terminal))
}

func TestPublishFailureKeepsTerminal(t *testing.T) {
	svc, _ := newService(store.Limits{})
	svc.SetPublisher(&fakePublisher{err: errors.New("nats down")})

	id, err := svc.AddTerminal(models.Terminal{})
	require.NoError(t, err)
	_, err = svc.GetTerminal(id)
	assert.NoError(t, err)
}

func TestBootstrap(t *testing.T) {
	svc, _ := newService(store.Limits{})

	require.NoError(t, svc.Bootstrap(""))

	out, err := svc.ListTerminals()
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"CardType":["Visa"],"TransactionType":["Credit"]},
		{"id":2,"CardType":["Visa","MasterCard","EFTPOS"],"TransactionType":["Cheque","Credit"]}
	]`, string(out))
}

func TestBootstrapFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("array of terminals", func(t *testing.T) {
		path := filepath.Join(dir, "terminals.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"CardType":["Amex"],"TransactionType":["Other"]},
			{"CardType":["JBC"],"TransactionType":["Savings"]}
		]`), 0o644))

		svc, _ := newService(store.Limits{})
		require.NoError(t, svc.Bootstrap(path))
		assert.Equal(t, 4, svc.Count())

		out, err := svc.GetTerminal(4)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":4,"CardType":["JBC"],"TransactionType":["Savings"]}`, string(out))
	})

	t.Run("invalid file adds nothing", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"CardType":["Amex"],"TransactionType":["Other"]},
			{"CardType":["Diners"],"TransactionType":[]}
		]`), 0o644))

		svc, _ := newService(store.Limits{})
		err := svc.LoadFile(path)
		require.ErrorIs(t, err, models.ErrInvalidReference)
		assert.Equal(t, 0, svc.Count())
	})

	t.Run("missing file", func(t *testing.T) {
		svc, _ := newService(store.Limits{})
		assert.Error(t, svc.LoadFile(filepath.Join(dir, "nope.json")))
	})
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "malformed", FailureReason(fmt.Errorf("x: %w", models.ErrMalformed)))
	assert.Equal(t, "missing_field", FailureReason(models.ErrMissingField))
	assert.Equal(t, "invalid_reference", FailureReason(models.ErrInvalidReference))
	assert.Equal(t, "capacity_exceeded", FailureReason(models.ErrCapacityExceeded))
	assert.Equal(t, "terminal_assigned", FailureReason(models.ErrTerminalAssigned))
	assert.Equal(t, "unknown", FailureReason(errors.New("boom")))
}
