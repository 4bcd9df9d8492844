package streaming

import (
	"encoding/json"

	"github.com/simviz/sceneclient/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeAddObject    = "add_object"
	TypePose         = "pose"
	TypeContacts     = "contacts"
	TypeReinit       = "reinitialized"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the viewer's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session metadata.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// ContactsPayload carries one tick's full contact set.
type ContactsPayload struct {
	Tick     uint64               `json:"tick"`
	Contacts []core.ContactSample `json:"contacts"`
}
