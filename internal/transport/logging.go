// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	applog "regionplay/internal/log"
)

// LoggingTransport implements the Transport interface by writing every
// message to the debug log.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("transport: using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data.
func (lt *LoggingTransport) Send(data any) error {
	if applog.GetLevel() > applog.LevelDebug {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		// Log type and raw data if marshaling fails
		applog.Debugf("transport: %T: %+v (JSON marshal error: %v)", data, data, err)
		return nil
	}
	applog.Debugf("transport: %s", jsonData)
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("transport: logging transport closed")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
