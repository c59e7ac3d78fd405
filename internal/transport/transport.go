// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"time"
)

// Transport defines a generic interface for sending state updates to
// observers outside the process. Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// Kind names a message type on the wire.
type Kind string

const (
	// KindRegion carries a region proposed by the selection controller.
	KindRegion Kind = "region"
	// KindSnapshot carries the full render state.
	KindSnapshot Kind = "snapshot"
	// KindSource announces a newly loaded track.
	KindSource Kind = "source"
	// KindExport reports a written clip.
	KindExport Kind = "export"
)

// Message is the envelope every transport sends.
type Message struct {
	Kind    Kind      `json:"kind"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

// NewMessage stamps payload with the current time.
func NewMessage(kind Kind, payload any) Message {
	return Message{Kind: kind, Time: time.Now(), Payload: payload}
}

// Multi fans every message out to several transports.
type Multi []Transport

// Send forwards data to every transport and joins their errors.
func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
