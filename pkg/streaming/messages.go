// Package streaming defines the wire format used to stream a match journal
// to external consumers (websocket presenters, NATS subscribers).
package streaming

import (
	"encoding/json"

	"github.com/tormentor-esp/extension/pkg/core"
)

const (
	TypeStartMatch   = "start_match"
	TypeEndMatch     = "end_match"
	TypeSpawnerEvent = "spawner_event"
	TypeBossEvent    = "boss_event"
	TypeNotification = "notification"
)

// Envelope wraps every message.
type Envelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement of a message type.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`
}

// StartMatchPayload announces a match.
type StartMatchPayload struct {
	Match *core.Match `json:"match"`
}

// Marshal builds a JSON Envelope around payload. A nil payload encodes as
// JSON null.
func Marshal(msgType, sessionID string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, SessionID: sessionID, Payload: raw})
}
