// Package natspub republishes decoded metadata events onto NATS subjects so
// other systems (home automation, displays) can consume them without
// touching the pipe. Publishing is best-effort: connection loss is handled
// by the client's reconnect machinery and a failed publish never stops the
// stream.
package natspub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"tonearm/internal/logging"
	"tonearm/internal/metadata"
)

// Message is the JSON body published per event.
type Message struct {
	Kind string `json:"kind"`
	Type string `json:"type"`
	Code string `json:"code"`
	Text string `json:"text,omitempty"`
	Size int    `json:"size,omitempty"`
}

// Publisher republishes events to NATS. The zero value is unusable; use New.
type Publisher struct {
	url    string
	prefix string
	logger *slog.Logger

	mu   sync.Mutex
	conn *nats.Conn
}

// New builds a publisher for url with the given subject prefix. The
// connection is established lazily on first publish so a NATS outage at
// startup never blocks the daemon.
func New(url, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{
		url:    url,
		prefix: strings.Trim(prefix, "."),
		logger: logger,
	}
}

// Subject renders the subject an event publishes on. Identifier renderings
// with characters NATS reserves are sanitized.
func (p *Publisher) Subject(ev metadata.Event) string {
	return p.prefix + "." + token(ev.Type.String()) + "." + token(ev.Code.String())
}

// Publish sends one event. Oversized raw payloads ship size-only; text
// payloads ship verbatim.
func (p *Publisher) Publish(ev metadata.Event) error {
	conn, err := p.connect()
	if err != nil {
		return err
	}
	body, err := json.Marshal(Encode(ev))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := conn.Publish(p.Subject(ev), body); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close drains the connection if one was ever established.
func (p *Publisher) Close() {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()
	if conn != nil {
		_ = conn.Drain()
	}
}

func (p *Publisher) connect() (*nats.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		return p.conn, nil
	}
	conn, err := nats.Connect(p.url,
		nats.Name("tonearm"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				p.logger.Warn("nats disconnected", logging.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			p.logger.Info("nats reconnected", logging.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	p.conn = conn
	return conn, nil
}

// Encode maps an event onto the wire message. Raw payloads are summarized
// by size; base64-ing multi-megabyte artwork onto a bus subject helps
// nobody.
func Encode(ev metadata.Event) Message {
	return Message{
		Kind: ev.Kind.String(),
		Type: ev.Type.String(),
		Code: ev.Code.String(),
		Text: ev.Text,
		Size: len(ev.Raw),
	}
}

// token replaces subject-reserved characters in an identifier rendering.
func token(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '*', '>':
			return '_'
		default:
			return r
		}
	}, s)
}
