package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseStatus classifies a raw model response.
type ParseStatus int

const (
	// StatusOK means the response decoded to a JSON object.
	StatusOK ParseStatus = iota
	// StatusEmpty means the model returned no text.
	StatusEmpty
	// StatusMalformed means the text is not a JSON object.
	StatusMalformed
)

func (s ParseStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("ParseStatus(%d)", int(s))
	}
}

// Candidate holds the fields the model extracted. Optional fields are nil
// when absent, null, or of the wrong type.
type Candidate struct {
	Amount   *float64
	Merchant *string
	Date     *string
	Category *string
}

// Missing lists the required fields that are absent or zero, in schema order.
func (c Candidate) Missing() []string {
	var missing []string
	if c.Amount == nil || *c.Amount == 0 {
		missing = append(missing, "amount")
	}
	if c.Merchant == nil {
		missing = append(missing, "merchant")
	}
	return missing
}

// ParseResult is the outcome of decoding one model response.
type ParseResult struct {
	Status    ParseStatus
	Candidate Candidate
	Err       error // decode error when Status is StatusMalformed
}

// ParseResponse decodes raw model text. It never fails: problems are reported
// through the result's Status.
func ParseResponse(raw string) ParseResult {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return ParseResult{Status: StatusEmpty}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return ParseResult{Status: StatusMalformed, Err: fmt.Errorf("unmarshal model JSON: %w", err)}
	}
	if obj == nil {
		return ParseResult{Status: StatusMalformed, Err: fmt.Errorf("model JSON is null")}
	}

	return ParseResult{
		Status: StatusOK,
		Candidate: Candidate{
			Amount:   getOptionalNumber(obj, "amount"),
			Merchant: getOptionalString(obj, "merchant"),
			Date:     getOptionalString(obj, "date"),
			Category: getOptionalString(obj, "category"),
		},
	}
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// A top-level array is left alone so it is reported as malformed.
	if strings.HasPrefix(s, "[") {
		return s
	}
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func getOptionalString(m map[string]interface{}, key string) *string {
	v, ok := m[key].(string)
	if !ok {
		return nil
	}
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	return &s
}

// getOptionalNumber accepts JSON numbers and numeric strings such as "24.50"
// or "1,299.00".
func getOptionalNumber(m map[string]interface{}, key string) *float64 {
	var f float64
	switch val := m[key].(type) {
	case float64:
		f = val
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
