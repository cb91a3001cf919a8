// Per-job append-only event log backing the analysis progress stream.

package events

import "encoding/json"

// Type is the kind of a log entry. A terminal type closes the stream for
// any attached reader.
type Type string

const (
	TypeStatus Type = "status"
	TypeDelta  Type = "delta"
	TypeDone   Type = "done"
	TypeError  Type = "error"
)

// Terminal reports whether no further entries may be delivered after this
// one. Exactly one terminal entry is published per job.
func (t Type) Terminal() bool {
	return t == TypeDone || t == TypeError
}

// Entry is one element of a job's ordered event log. IDs are assigned by
// the log and increase monotonically within one stream.
type Entry struct {
	ID      string
	Type    Type
	Payload json.RawMessage
}

// StreamKey returns the log key owning the given job id's namespace.
func StreamKey(jobID string) string {
	return "analysis:stream:" + jobID
}

// StatusPayload is carried by status events.
type StatusPayload struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DeltaPayload carries one streamed chunk of the analysis text.
type DeltaPayload struct {
	Text string `json:"text"`
}
