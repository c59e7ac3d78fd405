// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	applog "regionplay/internal/log"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("udp: sender closed")

// UDPSender writes status datagrams to one fixed peer. Nobody has to be
// listening: a refused datagram is counted as dropped and the next tick
// simply tries again.
type UDPSender struct {
	target *net.UDPAddr

	mu   sync.Mutex // Serializes writes against Close.
	conn *net.UDPConn

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewUDPSender connects a datagram socket to targetAddress ("host:port").
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	target, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("udp: resolving %q: %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, target)
	if err != nil {
		return nil, fmt.Errorf("udp: dialing %s: %w", target, err)
	}

	applog.Infof("udp: mirroring playback status from %s to %s", conn.LocalAddr(), target)
	return &UDPSender{target: target, conn: conn}, nil
}

// Send writes data as a single datagram. Safe for concurrent use.
func (s *UDPSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrSenderClosed
	}
	if _, err := s.conn.Write(data); err != nil {
		s.dropped.Add(1)
		// Routine when the mirror has no listener.
		applog.Debugf("udp: send to %s: %v", s.target, err)
		return fmt.Errorf("udp: send: %w", err)
	}
	s.sent.Add(1)
	return nil
}

// Stats reports how many datagrams were written and how many failed.
func (s *UDPSender) Stats() (sent, dropped uint64) {
	return s.sent.Load(), s.dropped.Load()
}

// Close releases the socket. Later calls are no-ops.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	sent, dropped := s.Stats()
	applog.Debugf("udp: closing %s after %d datagrams (%d dropped)", s.target, sent, dropped)
	if err := conn.Close(); err != nil {
		return fmt.Errorf("udp: close: %w", err)
	}
	return nil
}

// Target returns the resolved destination address.
func (s *UDPSender) Target() string {
	return s.target.String()
}

// LocalAddr returns the local end of the socket, or nil once closed.
func (s *UDPSender) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

var _ Sender = (*UDPSender)(nil)
