package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
	"github.com/custodia-labs/quill/internal/logger"
)

// Ensure SectionGenerator implements the interfaces.
var (
	_ driving.SectionService  = (*SectionGenerator)(nil)
	_ driven.PromptStoreAware = (*SectionGenerator)(nil)
)

// sectionTemperature is the sampling temperature for section text.
const sectionTemperature = 0.7

// DefaultSectionSystemPrompt is used when no PromptStore is configured.
const DefaultSectionSystemPrompt = "You are an expert academic writer."

// DefaultSectionPrompt is used when no PromptStore is configured.
// It expects %[1]s (section), %[2]s (topic) and %[3]s (context).
const DefaultSectionPrompt = `Using the following research context, generate the %[1]s section
of a research article about %[2]s.

Research Context:
%[3]s

Requirements:
- Follow academic writing standards
- Use the provided citations [n] where appropriate
- Use formal language
- Be precise and objective
- Connect ideas logically
- Maintain consistent citation format

Generate the %[1]s section:`

// SectionGenerator writes one article section from retrieved chunks.
// It keeps no state between sections.
type SectionGenerator struct {
	retriever   driving.RetrievalService
	llm         driven.LLMService
	promptStore driven.PromptStore
	threshold   float64
	topK        int
}

// NewSectionGenerator creates a section generator.
func NewSectionGenerator(retriever driving.RetrievalService, llm driven.LLMService) *SectionGenerator {
	return &SectionGenerator{
		retriever: retriever,
		llm:       llm,
		threshold: domain.DefaultThreshold,
		topK:      domain.DefaultTopK,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *SectionGenerator) SetPromptStore(store driven.PromptStore) {
	g.promptStore = store
}

// SetThreshold overrides the retrieval similarity threshold.
func (g *SectionGenerator) SetThreshold(threshold float64) {
	g.threshold = threshold
}

// SetTopK overrides the number of chunks given to the LLM per section.
// Non-positive values are ignored.
func (g *SectionGenerator) SetTopK(k int) {
	if k > 0 {
		g.topK = k
	}
}

// GenerateSection retrieves context for the section and asks the LLM to
// write it. It returns a placeholder instead of failing.
func (g *SectionGenerator) GenerateSection(ctx context.Context, sectionName, topic string) string {
	logger.Section("Section: " + sectionName)

	results := g.retriever.Retrieve(ctx, sectionName+" "+topic, domain.RetrievalOptions{
		TopK:      g.topK,
		Threshold: g.threshold,
	})
	if len(results) == 0 {
		logger.Warn("no relevant chunks for %s section", sectionName)
		return fmt.Sprintf("No content available for %s section", sectionName)
	}

	if g.llm == nil {
		logger.Error("generate %s section: %v", sectionName, domain.ErrLLMUnavailable)
		return fmt.Sprintf("Error generating %s section", sectionName)
	}

	prompt := fmt.Sprintf(g.loadPrompt(driven.PromptSection, DefaultSectionPrompt),
		sectionName, topic, assembleContext(results))

	content, err := g.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: g.loadPrompt(driven.PromptSectionSystem, DefaultSectionSystemPrompt)},
		{Role: driven.RoleUser, Content: prompt},
	}, driven.ChatOptions{Temperature: sectionTemperature})
	if err != nil {
		logger.Error("generate %s section: %v", sectionName, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err))
		return fmt.Sprintf("Error generating %s section", sectionName)
	}

	logger.Info("generated %s section from %d chunks", sectionName, len(results))
	return content
}

// assembleContext joins retrieved chunks, marking cited ones with " [n]".
func assembleContext(results []domain.RetrievalResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Text
		if r.CitationID > 0 {
			parts[i] += fmt.Sprintf(" [%d]", r.CitationID)
		}
	}
	return strings.Join(parts, "\n\n")
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (g *SectionGenerator) loadPrompt(name, fallback string) string {
	if g.promptStore == nil {
		return fallback
	}
	prompt, err := g.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
