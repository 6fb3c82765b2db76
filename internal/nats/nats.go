package nats

import (
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

var ErrNotConfigured = errors.New("nats url not configured")

type Nats struct {
	Url   string
	Token string
	Conn  *nats.Conn
}

// Connect dials url. The terminal service runs without messaging when no
// url is set, so an empty url yields ErrNotConfigured instead of a default.
func Connect(url, token, name string) (*Nats, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}

	n := &Nats{
		Url:   url,
		Token: token,
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(-1),
	}

	// if token provided
	if n.Token != "" {
		opts = append(opts, nats.Token(n.Token))
	}

	conn, err := nats.Connect(n.Url, opts...)
	if err != nil {
		return nil, err
	}

	n.Conn = conn

	return n, nil
}
