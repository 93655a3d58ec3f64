package vapi

import (
	"log"
	"regexp"
	"strings"
)

// UnknownCallerName is the placeholder used when no caller name is available.
const UnknownCallerName = "Unknown"

// SkipReason explains why a webhook delivery was dropped without processing.
// A skip is a normal outcome, not an error; the vendor re-delivers progress
// snapshots of in-flight calls and only completed calls are worth reporting.
type SkipReason string

const (
	// SkipAwaitingCompletion marks a real-time partial-progress delivery that
	// carries no transcript or summary and does not look finished yet.
	SkipAwaitingCompletion SkipReason = "awaiting completion"

	// SkipNoTranscript marks a delivery with nothing to transcribe and no
	// completion signal.
	SkipNoTranscript SkipReason = "no transcript, call not complete"
)

// completion thresholds and flag values observed from the vendor
const completionDurationSeconds = 30

var completedStatuses = map[string]bool{
	"completed": true,
	"ended":     true,
}

var hangupReasons = map[string]bool{
	"user-hangup":      true,
	"assistant-hangup": true,
}

// callerNamePattern recovers a self-introduced name from a transcript line
// such as "User: Hi, this is John calling about...". Best effort only.
var callerNamePattern = regexp.MustCompile(`User:[^\n]*?[Tt]his is ([A-Za-z]+)`)

// Normalizer maps raw Vapi webhook payloads into canonical CallEvents.
type Normalizer struct {
	// Persona is the assistant name used when reconstructing transcripts
	// from individual conversation turns.
	Persona string
}

// NewNormalizer creates a normalizer for the given assistant persona.
func NewNormalizer(persona string) *Normalizer {
	if persona == "" {
		persona = "Priya"
	}
	return &Normalizer{Persona: persona}
}

// Normalize derives a CallEvent from a decoded payload, or a SkipReason when
// the delivery is a partial-progress snapshot that must not trigger
// summarization or email. Exactly one of the two returns is set.
func (n *Normalizer) Normalize(p *Payload) (*CallEvent, SkipReason) {
	rec := p.WorkingRecord()

	callStatus := rec.CallStatus()
	duration := rec.DurationValue()
	complete := isCallComplete(callStatus, rec.EndedReason, duration)

	if rec.Transcript == "" && rec.Summary == "" && !complete {
		return nil, SkipAwaitingCompletion
	}

	transcript := rec.Transcript
	if transcript == "" && len(rec.Messages) > 0 {
		transcript = n.reconstructTranscript(rec.Messages)
	}
	if transcript == "" && !complete {
		return nil, SkipNoTranscript
	}

	number := ""
	if rec.Customer != nil && rec.Customer.Number != "" {
		number = rec.Customer.Number
	} else if rec.Caller != nil {
		number = rec.Caller.Number
	}

	name := UnknownCallerName
	if rec.Caller != nil && rec.Caller.Name != "" {
		name = rec.Caller.Name
	}
	if name == UnknownCallerName && transcript != "" {
		if m := callerNamePattern.FindStringSubmatch(transcript); m != nil {
			name = m[1]
			log.Printf("Recovered caller name %q from transcript", name)
		}
	}

	status := StatusCompleted
	if !complete {
		status = mapStatus(callStatus)
	}

	createdAt := rec.CreatedAt
	if createdAt == "" && rec.Call != nil {
		createdAt = rec.Call.CreatedAt
	}

	return &CallEvent{
		ID:              rec.CallID(),
		Status:          status,
		CallerName:      name,
		CallerNumber:    number,
		Transcript:      transcript,
		Summary:         rec.Summary,
		DurationSeconds: duration,
		RecordingURL:    rec.RecordingURL,
		EndedReason:     rec.EndedReason,
		CreatedAt:       createdAt,
		Cost:            rec.Cost,
	}, ""
}

// isCallComplete applies the completion heuristic: an explicit terminal
// status, a hangup ended-reason, or a duration long enough that the call must
// have been a real conversation.
func isCallComplete(status, endedReason string, duration *float64) bool {
	if completedStatuses[status] {
		return true
	}
	if hangupReasons[endedReason] {
		return true
	}
	return duration != nil && *duration > completionDurationSeconds
}

// reconstructTranscript joins the ordered conversation turns into the flat
// transcript form. Only user and bot turns are kept; the user side is labeled
// "Caller" and the bot side is labeled with the assistant persona.
func (n *Normalizer) reconstructTranscript(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case "user":
			lines = append(lines, "Caller: "+turn.Message)
		case "bot":
			lines = append(lines, n.Persona+": "+turn.Message)
		}
	}
	return strings.Join(lines, "\n")
}

func mapStatus(raw string) CallStatus {
	// Terminal statuses never reach here; they satisfy the completion heuristic.
	if raw == "in-progress" {
		return StatusInProgress
	}
	return StatusUnknown
}
