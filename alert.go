package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// --- Notifier ---

// Notifier sends text notifications to a channel.
type Notifier interface {
	Send(text string) error
	Name() string
}

// WebhookNotifier sends via Discord webhook.
type WebhookNotifier struct {
	WebhookURL string
	client     *http.Client
}

func newWebhookNotifier(webhookURL string) *WebhookNotifier {
	return &WebhookNotifier{
		WebhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Send(text string) error {
	// Discord limits content to 2000 chars.
	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen-3]) + "..."
	}
	payload, _ := json.Marshal(map[string]string{"content": text})
	req, err := http.NewRequest("POST", w.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord webhook: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (w *WebhookNotifier) Name() string { return "discord-webhook" }

// --- Due-Date Alerts ---

// formatDueAlert renders the single-task alert for the batch run. Assignees
// are always named in text; a mention tag is appended for each assignee with
// a configured Discord ID.
func formatDueAlert(t Task, overdue bool, ids *IdentityMap) string {
	date := t.Due.Format("2006-01-02")

	var assigned, tags string
	if len(t.Assignees) > 0 {
		assigned = " | Assigned to: **" + strings.Join(t.Assignees, ", ") + "**"
		var mentions []string
		for _, person := range t.Assignees {
			if id := ids.MentionID(person); id != "" {
				mentions = append(mentions, "<@"+id+">")
			}
		}
		if len(mentions) > 0 {
			tags = " " + strings.Join(mentions, " ")
		}
	}

	if overdue {
		return fmt.Sprintf("🚨 **OVERDUE!** **%s** was due on **%s**%s%s", t.Name, date, assigned, tags)
	}
	return fmt.Sprintf("⏰ Reminder! **%s** is due on **%s** — that's tomorrow!%s%s", t.Name, date, assigned, tags)
}
