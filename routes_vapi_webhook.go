package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"priya-cloud/notify"
	"priya-cloud/vapi"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Summarizer generates a call summary from a transcript and caller info.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, callerInfo string) (string, error)
}

// VapiWebhookHandler receives call webhooks from the voice vendor, normalizes
// them, and dispatches a summary email for completed calls. Skipped
// deliveries (partial progress snapshots) still get a 200 so the vendor does
// not retry them.
type VapiWebhookHandler struct {
	normalizer *vapi.Normalizer
	summarizer Summarizer
	sender     notify.Sender
	persona    string
}

// NewVapiWebhookHandler creates a new webhook handler.
func NewVapiWebhookHandler(summarizer Summarizer, sender notify.Sender, persona string) *VapiWebhookHandler {
	if persona == "" {
		persona = "Priya"
	}
	return &VapiWebhookHandler{
		normalizer: vapi.NewNormalizer(persona),
		summarizer: summarizer,
		sender:     sender,
		persona:    persona,
	}
}

// RegisterRoutes registers the webhook routes.
func (h *VapiWebhookHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/webhook/vapi", h.HandleWebhook).Methods("POST")
	router.HandleFunc("/webhook/vapi", h.HandleLiveness).Methods("GET")
}

// WebhookResponse is the acknowledgment returned to the vendor.
type WebhookResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	CallID           string `json:"callId,omitempty"`
	SummaryGenerated bool   `json:"summaryGenerated,omitempty"`
	EmailSent        bool   `json:"emailSent,omitempty"`
	Assistant        string `json:"assistant,omitempty"`
}

// HandleWebhook processes one webhook delivery: normalize, summarize if
// needed, email the report. No retries and no deduplication; a re-delivered
// webhook is processed again.
func (h *VapiWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deliveryID := uuid.NewString()

	var payload vapi.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("Webhook %s: malformed payload: %v", deliveryID, err)
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	rec := payload.WorkingRecord()
	log.Printf("Webhook %s: received call=%s status=%s hasTranscript=%t",
		deliveryID, rec.CallID(), rec.CallStatus(), rec.Transcript != "")

	event, skip := h.normalizer.Normalize(&payload)
	if skip != "" {
		log.Printf("Webhook %s: skipped call=%s: %s", deliveryID, rec.CallID(), skip)
		writeJSON(w, http.StatusOK, WebhookResponse{
			Success: true,
			Message: string(skip),
			CallID:  rec.CallID(),
		})
		return
	}

	summary := event.Summary
	summaryGenerated := false
	switch {
	case summary != "":
		log.Printf("Webhook %s: using vendor summary for call %s", deliveryID, event.ID)
	case event.Transcript != "":
		log.Printf("Webhook %s: generating AI summary for call %s", deliveryID, event.ID)
		generated, err := h.summarizer.Summarize(ctx, event.Transcript, event.CallerInfo())
		if err != nil {
			log.Printf("Webhook %s: summarization failed: %v", deliveryID, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		summary = generated
		summaryGenerated = true
	default:
		log.Printf("Webhook %s: no transcript for call %s, using fallback summary", deliveryID, event.ID)
		summary = fallbackSummary(event)
	}

	log.Printf("Webhook %s: sending email notification for call %s", deliveryID, event.ID)
	msg := notify.BuildCallSummaryEmail(event, summary, h.persona)
	if err := h.sender.Send(ctx, msg); err != nil {
		log.Printf("Webhook %s: email dispatch failed: %v", deliveryID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, WebhookResponse{
		Success:          true,
		Message:          "Webhook processed successfully",
		CallID:           event.ID,
		SummaryGenerated: summaryGenerated,
		EmailSent:        true,
		Assistant:        h.persona,
	})
}

// HandleLiveness answers webhook verification probes.
func (h *VapiWebhookHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   fmt.Sprintf("%s webhook endpoint is active", h.persona),
		"assistant": h.persona,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// fallbackSummary covers completed calls that produced neither a transcript
// nor a vendor summary. The report still goes out with what is known.
func fallbackSummary(event *vapi.CallEvent) string {
	duration := "an unknown duration"
	if event.DurationSeconds != nil {
		duration = fmt.Sprintf("%.0f seconds", *event.DurationSeconds)
	}
	return fmt.Sprintf("A call ended with status %q after %s. No transcript or summary was captured for this call.",
		event.Status, duration)
}
