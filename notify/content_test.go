package notify

import (
	"testing"

	"priya-cloud/vapi"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestBuildCallSummaryEmail(t *testing.T) {
	event := &vapi.CallEvent{
		ID:              "call-1",
		Status:          vapi.StatusCompleted,
		CallerName:      "John",
		CallerNumber:    "+15551234567",
		Transcript:      "Caller: Hi\nPriya: Hello",
		DurationSeconds: floatPtr(125),
		Cost:            floatPtr(0.0432),
		CreatedAt:       "2025-01-15T10:00:00Z",
	}

	msg := BuildCallSummaryEmail(event, "Caller asked for a callback.", "Priya")

	assert.Contains(t, msg.Subject, "Priya")
	assert.Contains(t, msg.Subject, "John")

	assert.Contains(t, msg.Text, "Call ID: call-1")
	assert.Contains(t, msg.Text, "John (+15551234567)")
	assert.Contains(t, msg.Text, "2 minutes")
	assert.Contains(t, msg.Text, "$0.0432")
	assert.Contains(t, msg.Text, "Caller asked for a callback.")
	assert.Contains(t, msg.Text, "Caller: Hi")

	assert.Contains(t, msg.HTML, "call-1")
	assert.Contains(t, msg.HTML, "Full Conversation")
}

func TestBuildCallSummaryEmail_SubjectFallsBackToNumber(t *testing.T) {
	event := &vapi.CallEvent{
		ID:           "call-2",
		Status:       vapi.StatusCompleted,
		CallerName:   vapi.UnknownCallerName,
		CallerNumber: "+15551234567",
	}

	msg := BuildCallSummaryEmail(event, "summary", "Priya")
	assert.Contains(t, msg.Subject, "+15551234567")
}

func TestBuildCallSummaryEmail_NoTranscriptOmitsSection(t *testing.T) {
	event := &vapi.CallEvent{ID: "call-3", Status: vapi.StatusCompleted}

	msg := BuildCallSummaryEmail(event, "summary", "Priya")
	assert.NotContains(t, msg.Text, "Full Conversation")
	assert.NotContains(t, msg.HTML, "Full Conversation")
	assert.Contains(t, msg.Text, "Duration: Unknown")
}

func TestBuildCallSummaryEmail_EscapesHTML(t *testing.T) {
	event := &vapi.CallEvent{
		ID:         "call-4",
		Status:     vapi.StatusCompleted,
		Transcript: "Caller: <script>alert(1)</script>",
	}

	msg := BuildCallSummaryEmail(event, "a <b>bold</b> summary", "Priya")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.NotContains(t, msg.HTML, "<b>bold</b>")
}
