package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"priya-cloud/security"

	"github.com/gorilla/mux"
	calendar "google.golang.org/api/calendar/v3"
)

const defaultListMaxResults = 10

// CalendarHandler exposes CRUD endpoints over the principal's primary Google
// Calendar. Every operation activates the stored credentials first and fails
// with 401 when no token is on file.
type CalendarHandler struct {
	google      *security.GoogleCalendarClient
	principalID string
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(google *security.GoogleCalendarClient, principalID string) *CalendarHandler {
	return &CalendarHandler{
		google:      google,
		principalID: principalID,
	}
}

// RegisterRoutes registers the calendar CRUD routes.
func (h *CalendarHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/calendar/events", h.HandleCreateEvent).Methods("POST")
	router.HandleFunc("/calendar/events", h.HandleListEvents).Methods("GET")
	router.HandleFunc("/calendar/events/{eventId}", h.HandleDeleteEvent).Methods("DELETE")
	// DELETE on the bare collection path means the event id was omitted.
	router.HandleFunc("/calendar/events", h.HandleDeleteMissingID).Methods("DELETE")
}

// EventTime is the start or end of an event.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Attendee is one invited participant.
type Attendee struct {
	Email string `json:"email"`
}

// CreateEventRequest is the body for event creation.
type CreateEventRequest struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Start       *EventTime `json:"start"`
	End         *EventTime `json:"end"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

// CreateEventResponse wraps the created event.
type CreateEventResponse struct {
	Success bool            `json:"success"`
	Event   *calendar.Event `json:"event"`
}

// ListEventsResponse wraps the listed events.
type ListEventsResponse struct {
	Success bool              `json:"success"`
	Events  []*calendar.Event `json:"events"`
}

// HandleCreateEvent creates an event on the primary calendar.
func (h *CalendarHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Summary == "" || req.Start == nil || req.End == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: summary, start, end")
		return
	}

	service, err := h.google.CalendarService(ctx, h.principalID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.DateTime,
			TimeZone: req.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.DateTime,
			TimeZone: req.End.TimeZone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 10},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, a := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: a.Email})
	}

	created, err := service.Events.Insert("primary", event).Context(ctx).Do()
	if err != nil {
		log.Printf("Error creating calendar event: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CreateEventResponse{Success: true, Event: created})
}

// HandleListEvents lists upcoming events on the primary calendar. Recurring
// events are expanded into single occurrences ordered by start time.
func (h *CalendarHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	timeMin := r.URL.Query().Get("timeMin")
	if timeMin == "" {
		timeMin = time.Now().Format(time.RFC3339)
	}
	timeMax := r.URL.Query().Get("timeMax")

	maxResults := int64(defaultListMaxResults)
	if raw := r.URL.Query().Get("maxResults"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			maxResults = n
		}
	}

	service, err := h.google.CalendarService(ctx, h.principalID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	call := service.Events.List("primary").
		TimeMin(timeMin).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime")
	if timeMax != "" {
		call = call.TimeMax(timeMax)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		log.Printf("Error listing calendar events: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	events := resp.Items
	if events == nil {
		events = []*calendar.Event{}
	}

	writeJSON(w, http.StatusOK, ListEventsResponse{Success: true, Events: events})
}

// HandleDeleteEvent deletes an event from the primary calendar.
func (h *CalendarHandler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID := mux.Vars(r)["eventId"]

	service, err := h.google.CalendarService(ctx, h.principalID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := service.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		log.Printf("Error deleting calendar event: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Event deleted successfully",
	})
}

// HandleDeleteMissingID rejects event deletion without an event id.
func (h *CalendarHandler) HandleDeleteMissingID(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, "Event ID is required")
}

func (h *CalendarHandler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, security.ErrNotAuthenticated) {
		writeError(w, http.StatusUnauthorized, "User not authenticated. Please authenticate first.")
		return
	}
	log.Printf("Failed to build calendar service: %v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}
