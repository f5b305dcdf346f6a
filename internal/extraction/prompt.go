package extraction

import (
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/smsspend/internal/domain"
)

// DefaultModelName is the Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

// buildPrompt renders the fixed extraction instruction for one SMS.
// today is the YYYY-MM-DD date the model should use when none is given.
func buildPrompt(smsText, today string) string {
	var b strings.Builder
	b.WriteString("You are a financial assistant. Extract transaction data from this SMS notification: \"")
	b.WriteString(smsText)
	b.WriteString("\".\n")
	b.WriteString("Look for:\n")
	b.WriteString("- Amount (number only)\n")
	b.WriteString("- Date (YYYY-MM-DD format)\n")
	b.WriteString("- Merchant/Vendor (The name of the store or person paid)\n")
	b.WriteString("- Category (Assign one: ")
	b.WriteString(strings.Join(domain.SuggestedCategories(), ", "))
	b.WriteString(")\n\n")
	b.WriteString("If the date is \"today\" or not specified, use the current date: ")
	b.WriteString(today)
	b.WriteString(".\n")
	b.WriteString("Return ONLY a raw JSON object. Do NOT wrap it in code fences.\n")
	return b.String()
}

// responseSchema constrains the model output to one transaction object.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"amount": {
				Type:        genai.TypeNumber,
				Description: "The numeric cost of the transaction.",
			},
			"date": {
				Type:        genai.TypeString,
				Description: "The date in YYYY-MM-DD format.",
			},
			"merchant": {
				Type:        genai.TypeString,
				Description: "Name of the shop or service provider.",
			},
			"category": {
				Type:        genai.TypeString,
				Description: "The expense category.",
			},
		},
		Required: []string{"amount", "merchant"},
	}
}
