// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Region Start      | float32        | 4            | Seconds                 |
| Region End        | float32        | 4            | Seconds                 |
| Playhead          | float32        | 4            | Seconds                 |
| Flags             | uint8          | 1            | Bit 0 playing, 1 ready  |
+-----------------------------------------------------------------------------+

Visual Layout:

|<- 4 Bytes ->|<--- 8 Bytes --->|<- 4 Bytes ->|<- 4 Bytes ->|<- 4 Bytes ->|<- 1 ->|
+-------------+-----------------+-------------+-------------+-------------+-------+
|  Sequence   |    Timestamp    |    Start    |     End     |  Playhead   | Flags |
+-------------+-----------------+-------------+-------------+-------------+-------+
*/

// PacketSize is the encoded length of a Packet.
const PacketSize = 4 + 8 + 4 + 4 + 4 + 1

const (
	flagPlaying uint8 = 1 << iota
	flagReady
)

// ErrShortPacket reports a datagram too small to hold a Packet.
var ErrShortPacket = errors.New("udp: short packet")

// Status is the playback state a publisher mirrors.
type Status struct {
	Start    float64
	End      float64
	Playhead float64
	Playing  bool
	Ready    bool
}

// Packet is one decoded datagram.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Status    Status
}

// packet mirrors the wire layout for binary.Write.
type packet struct {
	Sequence  uint32
	Timestamp int64
	Start     float32
	End       float32
	Playhead  float32
	Flags     uint8
}

// encode appends p to buf in wire order.
func (p Packet) encode(buf *bytes.Buffer) error {
	var flags uint8
	if p.Status.Playing {
		flags |= flagPlaying
	}
	if p.Status.Ready {
		flags |= flagReady
	}
	return binary.Write(buf, binary.BigEndian, packet{
		Sequence:  p.Sequence,
		Timestamp: p.Timestamp,
		Start:     float32(p.Status.Start),
		End:       float32(p.Status.End),
		Playhead:  float32(p.Status.Playhead),
		Flags:     flags,
	})
}

// Decode parses a datagram produced by a Publisher.
func Decode(data []byte) (Packet, error) {
	if len(data) < PacketSize {
		return Packet{}, ErrShortPacket
	}
	var raw packet
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &raw); err != nil {
		return Packet{}, err
	}
	return Packet{
		Sequence:  raw.Sequence,
		Timestamp: raw.Timestamp,
		Status: Status{
			Start:    float64(raw.Start),
			End:      float64(raw.End),
			Playhead: float64(raw.Playhead),
			Playing:  raw.Flags&flagPlaying != 0,
			Ready:    raw.Flags&flagReady != 0,
		},
	}, nil
}
