package engine

import (
	"strings"

	"whatsbot-gateway/internal/models"
)

// confirmationKeywords are the tokens treated as an order confirmation when
// found in inbound customer text. Mixed Urdu/English, matched lowercase.
var confirmationKeywords = []string{
	"yes", "ok", "okay", "confirm", "confirmed", "done",
	"g", "ji", "han ji", "hn ji", "haan", "kr do", "krdo", "kar do", "theek hai",
}

// MatchFAQ returns the first FAQ (in stored order) whose keywords match the
// inbound text, or nil when nothing matches. A keyword matches when it equals
// the normalized text or appears as a substring of it.
func MatchFAQ(inbound string, faqs []models.FAQ) *models.FAQ {
	text := strings.ToLower(strings.TrimSpace(inbound))
	if text == "" {
		return nil
	}
	for i := range faqs {
		for _, kw := range faqs[i].KeywordList() {
			kw = strings.ToLower(kw)
			if text == kw || strings.Contains(text, kw) {
				return &faqs[i]
			}
		}
	}
	return nil
}

// IsConfirmation reports whether inbound text should be treated as the
// customer confirming their order.
func IsConfirmation(inbound string) bool {
	text := strings.ToLower(strings.TrimSpace(inbound))
	if text == "" {
		return false
	}
	for _, kw := range confirmationKeywords {
		if text == kw || strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
