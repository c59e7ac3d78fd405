// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStatus struct {
	mu sync.Mutex
	s  Status
}

func (p *staticStatus) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s
}

type captureSender struct {
	mu      sync.Mutex
	packets [][]byte
}

func (c *captureSender) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packets = append(c.packets, bytes.Clone(data))
	return nil
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.packets)
}

func TestPacketRoundTrip(t *testing.T) {
	in := Packet{
		Sequence:  7,
		Timestamp: 1234567890,
		Status:    Status{Start: 5, End: 15, Playhead: 9.5, Playing: true, Ready: true},
	}
	var buf bytes.Buffer
	require.NoError(t, in.encode(&buf))
	assert.Equal(t, PacketSize, buf.Len())

	out, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPacketLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Packet{Sequence: 1, Status: Status{Ready: true}}.encode(&buf))
	b := buf.Bytes()
	assert.Equal(t, []byte{0, 0, 0, 1}, b[:4], "sequence is big endian")
	assert.Equal(t, flagReady, b[PacketSize-1])
}

func TestDecodeShortPacket(t *testing.T) {
	_, err := Decode(make([]byte, PacketSize-1))
	assert.True(t, errors.Is(err, ErrShortPacket))
}

func TestNewUDPPublisherValidation(t *testing.T) {
	_, err := NewUDPPublisher(time.Millisecond, nil, &staticStatus{})
	assert.Error(t, err)
	_, err = NewUDPPublisher(time.Millisecond, &captureSender{}, nil)
	assert.Error(t, err)

	p, err := NewUDPPublisher(0, &captureSender{}, &staticStatus{})
	require.NoError(t, err)
	assert.Equal(t, 16*time.Millisecond, p.interval)
}

func TestPublisherSequencesPackets(t *testing.T) {
	sender := &captureSender{}
	src := &staticStatus{s: Status{Start: 1, End: 2, Playhead: 1.5}}
	p, err := NewUDPPublisher(time.Millisecond, sender, src)
	require.NoError(t, err)

	p.Start()
	p.Start() // no-op
	require.Eventually(t, func() bool { return sender.count() >= 3 }, 2*time.Second, time.Millisecond)
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())

	sender.mu.Lock()
	defer sender.mu.Unlock()
	for i, raw := range sender.packets {
		pkt, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, uint32(i+1), pkt.Sequence)
		assert.Equal(t, src.s, pkt.Status)
	}
}

func TestPublisherRestart(t *testing.T) {
	sender := &captureSender{}
	p, err := NewUDPPublisher(time.Millisecond, sender, &staticStatus{})
	require.NoError(t, err)

	p.Start()
	require.Eventually(t, func() bool { return sender.count() >= 1 }, 2*time.Second, time.Millisecond)
	require.NoError(t, p.Close())
	n := sender.count()

	p.Start()
	require.Eventually(t, func() bool { return sender.count() > n }, 2*time.Second, time.Millisecond)
	require.NoError(t, p.Close())
}

func TestSenderDeliversToListener(t *testing.T) {
	ln, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s, err := NewUDPSender(ln.LocalAddr().String())
	require.NoError(t, err)
	assert.Equal(t, ln.LocalAddr().String(), s.Target())
	assert.NotNil(t, s.LocalAddr())

	var buf bytes.Buffer
	require.NoError(t, Packet{Sequence: 42, Status: Status{End: 30, Playing: true}}.encode(&buf))
	require.NoError(t, s.Send(buf.Bytes()))

	require.NoError(t, ln.SetReadDeadline(time.Now().Add(2*time.Second)))
	recv := make([]byte, 64)
	n, _, err := ln.ReadFrom(recv)
	require.NoError(t, err)

	pkt, err := Decode(recv[:n])
	require.NoError(t, err)
	assert.Equal(t, uint32(42), pkt.Sequence)
	assert.True(t, pkt.Status.Playing)
	assert.Equal(t, 30.0, pkt.Status.End)

	sent, dropped := s.Stats()
	assert.Equal(t, uint64(1), sent)
	assert.Zero(t, dropped)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Send([]byte{1}), ErrSenderClosed)
	assert.Nil(t, s.LocalAddr())
}

func TestNewUDPSenderBadAddress(t *testing.T) {
	_, err := NewUDPSender("not an address")
	assert.Error(t, err)
}
