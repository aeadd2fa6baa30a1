package internal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	titleWordLimit = 6
	titleCharLimit = 40
)

var listItemPattern = regexp.MustCompile(`^\s*([-*•]|\d+[.)])\s+\S`)

// CountWords returns the number of whitespace-delimited tokens in s
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// SumWordCount totals CountWords over every message body
func SumWordCount(msgs []Message) int {
	total := 0
	for _, msg := range msgs {
		total += CountWords(msg.Content)
	}
	return total
}

// GenerateChatTitle derives a session title from the first user message.
// It keeps the first six words and ellipsizes anything past 40 characters.
func GenerateChatTitle(firstUserMessage string) string {
	words := strings.Fields(firstUserMessage)
	if len(words) == 0 {
		return DefaultTitle
	}
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}

	title := strings.Join(words, " ")
	runes := []rune(title)
	if len(runes) > titleCharLimit {
		return string(runes[:titleCharLimit]) + "..."
	}
	return title
}

// FirstUserMessage returns the content of the earliest user message
func FirstUserMessage(msgs []Message) (string, bool) {
	for _, msg := range msgs {
		if msg.Sender == SenderUser {
			return msg.Content, true
		}
	}
	return "", false
}

// LastUserMessage scans backward for the most recent user message
func LastUserMessage(msgs []Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == SenderUser {
			return msgs[i].Content, true
		}
	}
	return "", false
}

// DetectKind classifies a reply as code, list or plain text
func DetectKind(content string) MessageKind {
	if strings.Contains(content, "```") {
		return KindCode
	}

	items := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !listItemPattern.MatchString(line) {
			return KindText
		}
		items++
	}
	if items > 0 {
		return KindList
	}
	return KindText
}

// FormatRelative renders t relative to now the way the message view does
func FormatRelative(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff.Minutes())
	if minutes < 1 {
		return "Just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}

	return t.Local().Format("2006-01-02")
}
