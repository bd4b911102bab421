package engine

import (
	"regexp"
	"strings"

	"whatsbot-gateway/internal/models"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// ExtractVariables scans content for {token} placeholders and returns the
// deduplicated token names in first-seen order.
func ExtractVariables(content string) []string {
	seen := make(map[string]bool)
	var vars []string
	for _, m := range placeholderRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	return vars
}

// Render substitutes the supported placeholders with order and settings
// fields. Unknown placeholders are left literally in the output. When the
// order has no order number the first 8 characters of its id are used.
func Render(content string, order models.Order, settings models.Settings) string {
	orderNumber := order.OrderNumber
	if orderNumber == "" {
		orderNumber = order.ID
		if len(orderNumber) > 8 {
			orderNumber = orderNumber[:8]
		}
	}

	replacer := strings.NewReplacer(
		"{name}", order.Name,
		"{businessName}", settings.BusinessName,
		"{product}", order.Product,
		"{orderNumber}", orderNumber,
		"{websiteUrl}", settings.WebsiteURL,
	)
	return replacer.Replace(content)
}
