package vapi

// CallStatus is the normalized lifecycle state of a voice call.
type CallStatus string

const (
	StatusUnknown    CallStatus = "unknown"
	StatusInProgress CallStatus = "in_progress"
	StatusCompleted  CallStatus = "completed"
)

// CallEvent is the canonical form of one voice call, derived from a webhook
// delivery. It is never persisted; each delivery produces a fresh event.
type CallEvent struct {
	ID              string
	Status          CallStatus
	CallerName      string
	CallerNumber    string
	Transcript      string
	Summary         string
	DurationSeconds *float64
	RecordingURL    string
	EndedReason     string
	CreatedAt       string
	Cost            *float64
}

// CallerInfo renders the caller identity string used in summary prompts:
// the name when it is known (with the number in parentheses when one is on
// file), the bare number when only the number is known, "Unknown caller"
// otherwise.
func (e *CallEvent) CallerInfo() string {
	if e.CallerName != "" && e.CallerName != UnknownCallerName {
		if e.CallerNumber != "" {
			return e.CallerName + " (" + e.CallerNumber + ")"
		}
		return e.CallerName
	}
	if e.CallerNumber != "" {
		return e.CallerNumber
	}
	return "Unknown caller"
}

// Payload is the wire shape of a Vapi webhook delivery. The vendor sometimes
// nests the actual event under a "message" key and sometimes delivers it at
// the top level, so both shapes are decoded and WorkingRecord picks one.
type Payload struct {
	Message *Record `json:"message,omitempty"`
	Record
}

// WorkingRecord returns the object the normalizer treats as the event payload:
// the nested message record when present, the top-level record otherwise.
func (p *Payload) WorkingRecord() *Record {
	if p.Message != nil {
		return p.Message
	}
	return &p.Record
}

// Record holds every field any observed Vapi payload variant may carry. All
// fields are optional on the wire.
type Record struct {
	ID              string   `json:"id,omitempty"`
	Status          string   `json:"status,omitempty"`
	EndedReason     string   `json:"endedReason,omitempty"`
	Transcript      string   `json:"transcript,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	RecordingURL    string   `json:"recordingUrl,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
	DurationSeconds *float64 `json:"durationSeconds,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`
	Call            *CallRef `json:"call,omitempty"`
	Caller          *Party   `json:"caller,omitempty"`
	Customer        *Party   `json:"customer,omitempty"`
	Messages        []Turn   `json:"messages,omitempty"`
}

// CallRef is the nested call object some payload variants carry.
type CallRef struct {
	ID        string `json:"id,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Party identifies one side of the call. Caller and customer use the same shape.
type Party struct {
	Name   string `json:"name,omitempty"`
	Number string `json:"number,omitempty"`
}

// Turn is one entry of the ordered conversation log delivered when the vendor
// sends the transcript as individual messages instead of a flat string.
type Turn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// CallID returns the vendor call identifier, preferring the nested call object.
func (r *Record) CallID() string {
	if r.Call != nil && r.Call.ID != "" {
		return r.Call.ID
	}
	return r.ID
}

// CallStatus returns the raw vendor status, preferring the nested call object.
func (r *Record) CallStatus() string {
	if r.Call != nil && r.Call.Status != "" {
		return r.Call.Status
	}
	return r.Status
}

// DurationValue returns the call duration in seconds, preferring the
// durationSeconds field over the older duration field. nil when absent.
func (r *Record) DurationValue() *float64 {
	if r.DurationSeconds != nil {
		return r.DurationSeconds
	}
	return r.Duration
}
