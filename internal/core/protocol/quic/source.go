// Package quic adapts a QUIC datagram connection to the protocol.Source
// boundary. Datagrams give the unreliable, unordered delivery the sync core
// is built to absorb.
package quic

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
)

var _ protocol.Source = (*Source)(nil)

// Config holds the QUIC transport settings.
type Config struct {
	Addr               string
	DialTimeout        time.Duration
	BufferSize         int
	InsecureSkipVerify bool
}

// DefaultConfig returns the default QUIC transport configuration.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:        addr,
		DialTimeout: 10 * time.Second,
		BufferSize:  256,
	}
}

// Source pumps envelopes between a QUIC connection and the engine.
type Source struct {
	conn    *quic.Conn
	codec   protocol.Codec
	inbound chan protocol.Envelope
	logger  log.Log

	closed atomic.Bool
	group  *errgroup.Group
	cancel context.CancelFunc
}

// Dial connects to the server and starts the datagram read pump.
func Dial(ctx context.Context, config Config, logger log.Log) (*Source, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: config.InsecureSkipVerify,
		NextProtos:         []string{"driftsync-quic"},
	}
	quicConfig := &quic.Config{
		EnableDatagrams: true,
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, config.DialTimeout)
	defer cancelDial()

	conn, err := quic.DialAddr(dialCtx, config.Addr, tlsConfig, quicConfig)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", config.Addr, err)
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	group, pumpCtx := errgroup.WithContext(pumpCtx)

	s := &Source{
		conn:    conn,
		codec:   protocol.JSONCodec{},
		inbound: make(chan protocol.Envelope, config.BufferSize),
		logger:  logger.With(log.String("transport", "quic")),
		group:   group,
		cancel:  cancel,
	}

	group.Go(func() error { return s.readPump(pumpCtx) })

	s.logger.Info("connected", log.String("addr", config.Addr))
	return s, nil
}

// Receive returns the inbound envelope stream.
func (s *Source) Receive() <-chan protocol.Envelope {
	return s.inbound
}

// Send encodes one envelope into a datagram.
func (s *Source) Send(env protocol.Envelope) error {
	if s.closed.Load() {
		return protocol.ErrSourceClosed
	}
	data, err := s.codec.Encode(env)
	if err != nil {
		return err
	}
	if err := s.conn.SendDatagram(data); err != nil {
		return fmt.Errorf("send datagram: %w", err)
	}
	return nil
}

// Close tears the connection down and waits for the read pump to exit.
func (s *Source) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()
	err := s.conn.CloseWithError(0, "client closing")
	_ = s.group.Wait()
	s.logger.Info("closed")
	return err
}

func (s *Source) readPump(ctx context.Context) error {
	defer close(s.inbound)
	for {
		data, err := s.conn.ReceiveDatagram(ctx)
		if err != nil {
			if s.closed.Load() || ctx.Err() != nil {
				return nil
			}
			s.logger.Warn("receive failed", log.Error(err))
			return err
		}
		env, err := s.codec.Decode(data)
		if err != nil {
			s.logger.Warn("undecodable datagram dropped", log.Error(err))
			continue
		}
		select {
		case s.inbound <- env:
		default:
			s.logger.Warn("inbound buffer full, dropping datagram",
				log.String("type", string(env.Type)))
		}
	}
}
