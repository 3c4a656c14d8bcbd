// Package synthesis writes the final answer from an evidence bundle.
package synthesis

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/generation"
)

// Fixed user-facing messages.
const (
	NoProviderMessage       = "No language model provider is available. Set GROQ_API_KEY or enable a local Ollama model."
	GenerationFailedMessage = "Sorry, I could not generate an answer right now. Please try again later."
	noEvidenceNote          = "No evidence was found."
)

// SystemPrompt constrains the model to the supplied evidence.
const SystemPrompt = `You are an expert travel assistant. Answer the user's question about an attraction or activity using ONLY the information provided in the message. Never invent prices, opening hours, rules or other facts. If a section has no supporting information, say that the information is not available.

Format the answer in Markdown with these sections:
## Overview
## Inclusions & Exclusions
## Pricing
## Opening Hours
## Restrictions
## Tips`

// Synthesizer turns a query and its evidence into an answer.
type Synthesizer struct {
	generator   generation.Generator
	temperature float64
	logger      *zap.Logger
}

// New creates a Synthesizer. generator may be nil.
func New(generator generation.Generator, temperature float64, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{generator: generator, temperature: temperature, logger: logger}
}

// Synthesize always returns text: the model answer, NoProviderMessage, or
// GenerationFailedMessage.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, b evidence.Bundle) string {
	if s.generator == nil {
		return NoProviderMessage
	}

	answer, err := s.generator.Complete(ctx, SystemPrompt, UserPrompt(query, b), s.temperature)
	if err != nil {
		s.logger.Error("answer generation failed",
			zap.String("provider", s.generator.Name()),
			zap.String("error_class", evidence.Classify(err)),
			zap.Error(err))
		return GenerationFailedMessage
	}
	if strings.TrimSpace(answer) == "" {
		s.logger.Warn("answer generation returned empty text", zap.String("provider", s.generator.Name()))
		return GenerationFailedMessage
	}
	return answer
}

// UserPrompt lays out the query followed by each non-empty evidence block.
func UserPrompt(query string, b evidence.Bundle) string {
	parts := []string{"Query: " + query}
	add := func(label, text string) {
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, label+":\n"+text)
		}
	}
	add("RAG", b.RAG)
	add("Additional", b.Supplementary)
	add("Booking", b.Activity)
	add("Web", b.Web)

	if len(parts) == 1 {
		parts = append(parts, noEvidenceNote)
	}
	return strings.Join(parts, "\n\n")
}
