// Package websocket adapts a gorilla/websocket connection to the
// protocol.Source boundary. The core never imports this package; the client
// binary wires it in.
package websocket

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
)

var _ protocol.Source = (*Source)(nil)

// Config holds the websocket transport settings.
type Config struct {
	URL          string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

// DefaultConfig returns the default websocket transport configuration.
func DefaultConfig(url string) Config {
	return Config{
		URL:          url,
		DialTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   256,
	}
}

// Source pumps envelopes between a websocket connection and the engine.
type Source struct {
	conn    *websocket.Conn
	config  Config
	codec   protocol.Codec
	inbound chan protocol.Envelope
	logger  log.Log

	closed  atomic.Bool
	writeMu sync.Mutex
	group   *errgroup.Group
	cancel  context.CancelFunc
}

// Dial connects to the server and starts the read pump.
func Dial(ctx context.Context, config Config, logger log.Log) (*Source, error) {
	dialCtx, cancelDial := context.WithTimeout(ctx, config.DialTimeout)
	defer cancelDial()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", config.URL, err)
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	group, pumpCtx := errgroup.WithContext(pumpCtx)

	s := &Source{
		conn:    conn,
		config:  config,
		codec:   protocol.JSONCodec{},
		inbound: make(chan protocol.Envelope, config.BufferSize),
		logger:  logger.With(log.String("transport", "websocket")),
		group:   group,
		cancel:  cancel,
	}

	group.Go(func() error { return s.readPump(pumpCtx) })

	s.logger.Info("connected", log.String("url", config.URL))
	return s, nil
}

// Receive returns the inbound envelope stream. The channel closes when the
// connection goes away.
func (s *Source) Receive() <-chan protocol.Envelope {
	return s.inbound
}

// Send encodes and writes one envelope. Writes are serialized; gorilla
// connections allow only one concurrent writer.
func (s *Source) Send(env protocol.Envelope) error {
	if s.closed.Load() {
		return protocol.ErrSourceClosed
	}
	data, err := s.codec.Encode(env)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.config.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close tears the connection down and waits for the read pump to exit.
func (s *Source) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()
	err := s.conn.Close()
	_ = s.group.Wait()
	s.logger.Info("closed")
	return err
}

func (s *Source) readPump(ctx context.Context) error {
	defer close(s.inbound)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			s.logger.Warn("read failed", log.Error(err))
			return err
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		env, err := s.codec.Decode(data)
		if err != nil {
			s.logger.Warn("undecodable frame dropped", log.Error(err))
			continue
		}
		select {
		case s.inbound <- env:
		default:
			// Engine inbox discipline applies here too: never block the
			// socket reader on a slow consumer.
			s.logger.Warn("inbound buffer full, dropping frame",
				log.String("type", string(env.Type)))
		}
	}
}
