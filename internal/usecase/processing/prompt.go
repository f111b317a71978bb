package processing

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agencyos/meeting-scribe/internal/domain/entities"
)

// transcriptCharBudget caps transcript size in the prompt for token control
const transcriptCharBudget = 60000

// BuildPrompt renders the meeting payload and context snapshot into the
// processing prompt. The model answers with a ProcessingResult JSON document
// or the declared error schema.
func BuildPrompt(event *entities.MeetingEvent, snapshot *entities.ContextSnapshot) string {
	var sb strings.Builder

	sb.WriteString("You are processing meeting notes for a markdown knowledge base that runs an AI automation agency.\n\n")
	sb.WriteString("Your job is to analyze the meeting data and:\n")
	sb.WriteString("1. Classify the meeting type\n")
	sb.WriteString("2. Identify all attendees and match to known contacts\n")
	sb.WriteString("3. Extract actionable information\n")
	sb.WriteString("4. Determine which knowledge-base files need updates\n")
	sb.WriteString("5. Generate the exact content for each file update\n\n")

	sb.WriteString("All file paths must start with \"" + entities.PathPrefix + "\" and use only letters, digits, '-', '_', '/' and '.'.\n")
	sb.WriteString("Every action item priority maps to exactly one marker: urgent=🔴, important=🟡, strategic=🟢.\n\n")

	sb.WriteString("---\n\n## Equity Partners\n\n")
	for _, p := range snapshot.Partners {
		fmt.Fprintf(&sb, "- **%s** (%s): %s\n", p.Name, p.Email, p.Role)
	}

	sb.WriteString("\n## Known Coaches\n\n")
	writeContacts(&sb, snapshot.Coaches)

	sb.WriteString("\n## Known Contacts\n\n")
	writeContacts(&sb, snapshot.Contacts)

	sb.WriteString("\n## Active Projects\n\n")
	if len(snapshot.Projects) == 0 {
		sb.WriteString("None on record.\n")
	}
	for _, p := range snapshot.Projects {
		fmt.Fprintf(&sb, "- %s (%s)\n", p.Name, p.FilePath)
	}

	fmt.Fprintf(&sb, "\n## Current Date\n\n%s\n", time.Now().Format("2006-01-02"))

	sb.WriteString("\n---\n\n## Meeting Data\n\n")
	title := event.Meeting.Title
	if title == "" {
		title = "Untitled Meeting"
	}
	fmt.Fprintf(&sb, "**Title:** %s\n\n", title)
	fmt.Fprintf(&sb, "**Date:** %s\n\n", event.Date())
	fmt.Fprintf(&sb, "**Duration:** %d minutes\n\n", event.DurationMinutes())

	sb.WriteString("**Attendees:**\n")
	for _, a := range event.Attendees {
		email := a.Email
		if email == "" {
			email = "no email"
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", a.Name, email)
	}

	summary := event.Summary
	if summary == "" {
		summary = "No summary provided"
	}
	fmt.Fprintf(&sb, "\n**Source Summary:**\n%s\n", summary)

	sb.WriteString("\n**Source Action Items:**\n")
	if len(event.ActionItems) == 0 {
		sb.WriteString("No action items identified\n")
	}
	for _, item := range event.ActionItems {
		line := "- " + item.Text
		if item.Assignee != "" {
			line += " [Assigned to: " + item.Assignee + "]"
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n**Full Transcript:**\n")
	sb.WriteString(truncateTranscript(event.TranscriptText()))
	sb.WriteString("\n")

	return sb.String()
}

func writeContacts(sb *strings.Builder, contacts []entities.Contact) {
	if len(contacts) == 0 {
		sb.WriteString("None on record.\n")
		return
	}
	for _, c := range contacts {
		line := "- " + c.Name
		var details []string
		if c.Email != "" {
			details = append(details, c.Email)
		}
		if c.Company != "" {
			details = append(details, c.Company)
		}
		if c.Role != "" {
			details = append(details, c.Role)
		}
		if len(details) > 0 {
			line += " (" + strings.Join(details, ", ") + ")"
		}
		fmt.Fprintf(sb, "%s [%s]\n", line, c.FilePath)
	}
}

func truncateTranscript(text string) string {
	if text == "" {
		return "No transcript available"
	}
	if len(text) <= transcriptCharBudget {
		return text
	}

	// Back up to a rune boundary so the cut never splits a multibyte
	// character
	cut := transcriptCharBudget
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n\n[transcript truncated]"
}
