package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"temple-notify/internal/domain/entity"
)

// maxNamesInBroadcast caps how many display names a broadcast body lists
// before collapsing the rest into a "+N more" tail.
const maxNamesInBroadcast = 8

// FormatNames joins up to maxNamesInBroadcast names with ", " and
// appends " +N more" for any overflow. Empty names are dropped first.
func FormatNames(names []string) string {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	shown := kept
	if len(shown) > maxNamesInBroadcast {
		shown = shown[:maxNamesInBroadcast]
	}
	joined := strings.Join(shown, ", ")
	if more := len(kept) - len(shown); more > 0 {
		return joined + " +" + strconv.Itoa(more) + " more"
	}
	return joined
}

// occasionBroadcastMessage builds the single daily topic broadcast for a
// birthday or anniversary run: "(N) name, name, ...".
func occasionBroadcastMessage(kind, slot, date, community string, recipients []entity.Recipient) Message {
	names := make([]string, 0, len(recipients))
	for _, r := range recipients {
		names = append(names, r.DisplayName)
	}

	var noun string
	switch kind {
	case entity.KindAnniversary:
		noun = "Wedding Anniversaries"
	default:
		noun = "Birthdays"
	}

	return Message{
		Title: fmt.Sprintf("🎉 Today: %s (%s)", noun, community),
		Body:  fmt.Sprintf("(%d) %s", len(recipients), FormatNames(names)),
		Data: map[string]string{
			"type":  kind,
			"slot":  slot,
			"date":  date,
			"count": strconv.Itoa(len(recipients)),
		},
	}
}

// festivalBroadcastMessage builds one topic broadcast per calendar event.
// The title depends on whether the slot announces today's or tomorrow's
// festivals; the body is "event — description" when a description exists.
func festivalBroadcastMessage(slot, date string, event entity.CalendarEvent) Message {
	title := "🌸 Today: Vaishnava Festival"
	if slot == SlotTomorrow5PM {
		title = "🔔 Tomorrow: Vaishnava Festival"
	}

	body := event.Event
	if event.Description != "" {
		body += " — " + event.Description
	}

	return Message{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":  entity.KindFestival,
			"slot":  slot,
			"date":  date,
			"event": event.Event,
		},
	}
}

// personalWishMessage builds the per-device greeting for one recipient.
func personalWishMessage(kind, date string, rec entity.Recipient) Message {
	var body string
	switch kind {
	case entity.KindAnniversary:
		body = fmt.Sprintf("Happy Wedding Anniversary %s! 🎂", rec.DisplayName)
	default:
		body = fmt.Sprintf("Happy Birthday %s! 🎂", rec.DisplayName)
	}
	return Message{
		Title: "Hare Krishna 🙏",
		Body:  body,
		Data: map[string]string{
			"type": kind,
			"date": date,
		},
	}
}
