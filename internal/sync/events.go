package sync

import "time"

const (
	EventWelcome             = "welcome"
	EventConsolidationUpdate = "consolidation.update"
	EventConsolidationDelete = "consolidation.delete"
	EventCorpusReload        = "corpus.reload"
	EventHarvestFinished     = "harvest.finished"
)

// Transports a subscriber can be attached through.
const (
	TransportTCP       = "tcp"
	TransportWebsocket = "websocket"
)

// Event is the payload pushed to every TCP and websocket subscriber.
type Event struct {
	Type    string    `json:"type"`
	Role    string    `json:"role,omitempty"`
	Changed int       `json:"changed,omitempty"`
	RunID   string    `json:"run_id,omitempty"`
	Shows   int       `json:"shows,omitempty"`
	At      time.Time `json:"at"`

	// Set on welcome events only.
	Transport string `json:"transport,omitempty"`
	Clients   int    `json:"clients,omitempty"`
}
