// Package services – ExtractionService
//
// This file implements the date-extraction adapter: raw contract text goes
// to a chat-completion service with a strict JSON instruction, and the
// response is coerced into an ExtractedDates suggestion record. The adapter
// performs no validation beyond optional-field coercion — downstream
// consumers treat extracted fields as suggestions requiring user
// confirmation, never as trusted final values. It does not retry; any
// failure surfaces immediately as ErrExtraction.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExtractedDates is the structured suggestion returned to the upload form.
// All fields are optional except AutoRenews, which defaults to false when
// the model leaves it unspecified.
type ExtractedDates struct {
	StartDate        *string  `json:"start_date,omitempty"`
	RenewalDate      *string  `json:"renewal_date,omitempty"`
	NoticePeriodDays *int     `json:"notice_period_days,omitempty"`
	AutoRenews       bool     `json:"auto_renews"`
	ContractValue    *float64 `json:"contract_value,omitempty"`
}

// Completer is the chat-completion seam; *openai.Client satisfies it and
// tests substitute a fake.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ExtractionService turns contract text into an ExtractedDates suggestion
// through a completion service.
type ExtractionService struct {
	Client Completer
	// Model names the completion model; empty selects gpt-4o.
	Model string
	// MaxChars bounds the text prefix sent to the service, to bound cost
	// and latency; <= 0 selects 3000.
	MaxChars int
}

const extractionSystemPrompt = `You are a contract analysis assistant. Extract key dates and terms from contracts.

Return JSON with these fields (use null if not found):
- start_date: YYYY-MM-DD format
- renewal_date: YYYY-MM-DD format
- notice_period_days: number of days (e.g., 30, 60, 90)
- auto_renews: boolean (true if contract auto-renews, false otherwise)
- contract_value: number (annual value in dollars, no currency symbols)

Only extract information that is explicitly stated in the contract. Return valid JSON only.`

// Extract sends a bounded prefix of text to the completion service and
// parses the strict-JSON reply. Empty or unparseable model output fails
// with ErrExtraction.
func (s *ExtractionService) Extract(ctx context.Context, text string) (ExtractedDates, error) {
	tr := otel.Tracer("services/ExtractionService")
	ctx, span := tr.Start(ctx, "Extract",
		trace.WithAttributes(attribute.Int("text.len", len(text))),
	)
	defer span.End()

	if s.Client == nil {
		return ExtractedDates{}, fmt.Errorf("%w: completion service not configured", ErrExtraction)
	}

	model := s.Model
	if model == "" {
		model = openai.GPT4o
	}
	maxChars := s.MaxChars
	if maxChars <= 0 {
		maxChars = 3000
	}
	if runes := []rune(text); len(runes) > maxChars {
		text = string(runes[:maxChars])
	}

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Extract the contract details from this text:\n\n" + text},
		},
	})
	if err != nil {
		return ExtractedDates{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return ExtractedDates{}, fmt.Errorf("%w: empty completion", ErrExtraction)
	}

	var raw struct {
		StartDate        *string  `json:"start_date"`
		RenewalDate      *string  `json:"renewal_date"`
		NoticePeriodDays *int     `json:"notice_period_days"`
		AutoRenews       *bool    `json:"auto_renews"`
		ContractValue    *float64 `json:"contract_value"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return ExtractedDates{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	out := ExtractedDates{
		StartDate:        emptyToNil(raw.StartDate),
		RenewalDate:      emptyToNil(raw.RenewalDate),
		NoticePeriodDays: raw.NoticePeriodDays,
		ContractValue:    raw.ContractValue,
	}
	if raw.AutoRenews != nil {
		out.AutoRenews = *raw.AutoRenews
	}
	return out, nil
}

// emptyToNil treats "" and "null" string values from the model as absent.
func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	if v := strings.TrimSpace(*s); v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return s
}
