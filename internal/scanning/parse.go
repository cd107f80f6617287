package scanning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/ticket"
)

// ParseReceiptJSON decodes the JSON answer of a vision model into a receipt
func ParseReceiptJSON(text string) (*ticket.Receipt, error) {
	text = stripCodeFences(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var receipt ticket.Receipt
	if err := json.Unmarshal([]byte(text), &receipt); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// Models answer "null" as a string when they follow the prompt literally
	receipt.Establishment = nullable(receipt.Establishment)
	receipt.Date = nullable(receipt.Date)
	receipt.Normalize()

	return &receipt, nil
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func nullable(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}
