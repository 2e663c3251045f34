package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/kitbuilder587/deepseek-go/deepseek"
	"github.com/kitbuilder587/deepseek-go/internal/transcript"
)

const maxMessageLen = 4096 // лимит телеграма

func FormatReply(resp *deepseek.ChatResponse) string {
	content := strings.TrimSpace(resp.Content())
	if content == "" {
		return "<i>Пустой ответ модели.</i>"
	}
	return html.EscapeString(content)
}

func FormatHistory(items []transcript.Transcript) string {
	if len(items) == 0 {
		return "История пуста."
	}

	var sb strings.Builder
	sb.WriteString("<b>Последние запросы:</b>\n\n")

	for i, t := range items {
		status := "✓"
		if t.Failed() {
			status = "✗ " + t.ErrorKind
		}
		sb.WriteString(fmt.Sprintf("%d. %s [%s] %s\n   %s\n\n",
			i+1,
			t.CreatedAt.Format("02.01 15:04"),
			html.EscapeString(t.Model),
			status,
			html.EscapeString(truncateText(t.Prompt, 80)),
		))
	}

	sb.WriteString(fmt.Sprintf("Всего: %d", len(items)))
	return sb.String()
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return hardSplitPoint(text, maxLen)
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

// hardSplitPoint режет без пробелов: не посреди utf-8 символа и не
// посреди html-сущности вроде &amp;.
func hardSplitPoint(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	for pos > 0 && text[pos]&0xC0 == 0x80 {
		pos--
	}
	for i := pos - 1; i >= 0 && i > pos-8; i-- {
		if text[i] == ';' {
			break
		}
		if text[i] == '&' {
			if i > 0 {
				return i
			}
			break
		}
	}
	return pos
}

func truncateText(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes-3]) + "..."
}
