package broker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/avvvet/terminal-services/internal/comm"
	"github.com/avvvet/terminal-services/internal/terminalsvc/models"
	"github.com/avvvet/terminal-services/internal/terminalsvc/service"
)

// Broker exposes the terminal reads over NATS request/reply and publishes
// terminal events.
type Broker struct {
	Conn            *nats.Conn
	TerminalService *service.TerminalService
}

func NewBroker(nc *nats.Conn, terminalService *service.TerminalService) *Broker {
	return &Broker{
		Conn:            nc,
		TerminalService: terminalService,
	}
}

// QueueSubscribe lets several service instances share the request load.
func (b *Broker) QueueSubscribe(topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

func (b *Broker) handleMessage(msgNats *nats.Msg) {
	reply := b.Reply(msgNats.Data)
	if msgNats.Reply == "" {
		return
	}
	if err := msgNats.Respond(reply); err != nil {
		log.Errorf("Error responding on %s: %s", msgNats.Reply, err)
	}
}

// Reply builds the response to a terminal.service request.
func (b *Broker) Reply(data []byte) []byte {
	msg := &comm.Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		return errorReply("malformed request", err.Error())
	}

	switch msg.Type {
	case comm.TypeGetTerminal:
		var request comm.TerminalRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			return errorReply("malformed request", fmt.Sprintf("%s needs data.id: %s", msg.Type, err))
		}
		terminal, err := b.TerminalService.GetTerminal(models.TerminalID(request.ID))
		if errors.Is(err, models.ErrNotFound) {
			return errorReply("not found", fmt.Sprintf("terminal %d does not exist", request.ID))
		}
		if err != nil {
			log.Errorf("Error [TerminalService.GetTerminal] %s", err)
			return errorReply("unspecified error", err.Error())
		}
		return reply(msg.Type, terminal)

	case comm.TypeListTerminals:
		terminals, err := b.TerminalService.ListTerminals()
		if err != nil {
			log.Errorf("Error [TerminalService.ListTerminals] %s", err)
			return errorReply("unspecified error", err.Error())
		}
		return reply(msg.Type, terminals)

	default:
		log.Warnf("unknown message type received: %s", msg.Type)
		return errorReply("unspecified error", fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func reply(requestType string, data []byte) []byte {
	out, _ := json.Marshal(comm.Message{Type: comm.ResponseType(requestType), Data: data})
	return out
}

func errorReply(code, description string) []byte {
	data, _ := json.Marshal(comm.ErrorData{Error: code, ErrorDescription: description})
	out, _ := json.Marshal(comm.Message{Type: comm.TypeError, Data: data})
	return out
}
