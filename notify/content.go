package notify

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"priya-cloud/vapi"
)

// Helper to allow time mocking in tests
var now = time.Now

// BuildCallSummaryEmail renders the call summary report sent after each
// processed call: a details table, the summary, and the full transcript when
// one was captured.
func BuildCallSummaryEmail(event *vapi.CallEvent, summary, persona string) Message {
	caller := event.CallerName
	if caller == "" || caller == vapi.UnknownCallerName {
		caller = event.CallerNumber
	}
	if caller == "" {
		caller = "Unknown Caller"
	}

	subject := fmt.Sprintf("📞 Call Summary from %s - %s", persona, caller)

	number := event.CallerNumber
	if number == "" {
		number = "No number"
	}

	duration := "Unknown"
	if event.DurationSeconds != nil {
		duration = fmt.Sprintf("%d minutes", int(math.Round(*event.DurationSeconds/60)))
	}

	cost := "Unknown"
	if event.Cost != nil {
		cost = fmt.Sprintf("$%.4f", *event.Cost)
	}

	callDate := now().Format("1/2/2006, 3:04:05 PM")
	if event.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, event.CreatedAt); err == nil {
			callDate = t.Format("1/2/2006, 3:04:05 PM")
		}
	}

	generatedAt := now().Format("1/2/2006, 3:04:05 PM")

	var text strings.Builder
	fmt.Fprintf(&text, "🤖 %s - Your Personal AI Assistant\n", persona)
	text.WriteString("📞 Call Summary Report\n\n")
	text.WriteString("Call Details:\n")
	fmt.Fprintf(&text, "- Call ID: %s\n", event.ID)
	fmt.Fprintf(&text, "- Caller: %s (%s)\n", event.CallerName, number)
	fmt.Fprintf(&text, "- Date & Time: %s\n", callDate)
	fmt.Fprintf(&text, "- Duration: %s\n", duration)
	fmt.Fprintf(&text, "- Cost: %s\n", cost)
	fmt.Fprintf(&text, "- Status: %s\n\n", event.Status)
	fmt.Fprintf(&text, "🤖 AI Summary:\n%s\n", summary)
	if event.Transcript != "" {
		fmt.Fprintf(&text, "\n📝 Full Conversation:\n%s\n", event.Transcript)
	}
	text.WriteString("\n---\n")
	fmt.Fprintf(&text, "This summary was automatically generated by %s, your personal AI assistant.\n", persona)
	fmt.Fprintf(&text, "Call ID: %s | Generated at: %s\n", event.ID, generatedAt)

	var htmlBody strings.Builder
	htmlBody.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&htmlBody, `<h1 style="color: #6366f1;">🤖 %s</h1>`, html.EscapeString(persona))
	htmlBody.WriteString(`<h2>📞 Call Summary Report</h2>`)
	htmlBody.WriteString(`<h3>Call Details</h3><table style="width: 100%; border-collapse: collapse;">`)
	writeDetailRow(&htmlBody, "Call ID", event.ID)
	writeDetailRow(&htmlBody, "Caller", fmt.Sprintf("%s (%s)", event.CallerName, number))
	writeDetailRow(&htmlBody, "Date & Time", callDate)
	writeDetailRow(&htmlBody, "Duration", duration)
	writeDetailRow(&htmlBody, "Cost", cost)
	writeDetailRow(&htmlBody, "Status", string(event.Status))
	htmlBody.WriteString(`</table>`)
	fmt.Fprintf(&htmlBody, `<h3>🤖 AI Summary</h3><p style="line-height: 1.6;">%s</p>`,
		strings.ReplaceAll(html.EscapeString(summary), "\n", "<br>"))
	if event.Transcript != "" {
		fmt.Fprintf(&htmlBody, `<h3>📝 Full Conversation</h3><pre style="white-space: pre-wrap; font-size: 12px;">%s</pre>`,
			html.EscapeString(event.Transcript))
	}
	fmt.Fprintf(&htmlBody, `<p style="color: #6b7280; font-size: 12px;">This summary was automatically generated by %s, your personal AI assistant.<br>Call ID: %s | Generated at: %s</p>`,
		html.EscapeString(persona), html.EscapeString(event.ID), generatedAt)
	htmlBody.WriteString(`</div>`)

	return Message{
		Subject: subject,
		Text:    text.String(),
		HTML:    htmlBody.String(),
	}
}

func writeDetailRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `<tr><td style="padding: 8px 0; font-weight: bold; width: 120px;">%s:</td><td style="padding: 8px 0;">%s</td></tr>`,
		html.EscapeString(label), html.EscapeString(value))
}
