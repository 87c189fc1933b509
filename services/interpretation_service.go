package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/SAADSTACK/NeuroMetric-AI/config"

	openai "github.com/sashabaranov/go-openai"
)

// Interpreter generates the clinical narrative for a completed assessment.
// It is the one fallible external call in the scoring pipeline; callers must
// convert its failure to a fallback string, never propagate it.
type Interpreter interface {
	GenerateClinicalInterpretation(
		ctx context.Context,
		score int,
		maxScore int,
		status string,
		consistency float64,
		categoryScores map[string]int,
	) (string, error)
}

type interpretationService struct{}

// NewInterpretationService creates the LLM-backed Interpreter.
func NewInterpretationService() Interpreter {
	return &interpretationService{}
}

// GenerateClinicalInterpretation asks the configured model for a brief
// interpretation of the assessment. Contract with the provider: prose,
// at most ~150 words, no structural markup.
func (s *interpretationService) GenerateClinicalInterpretation(
	ctx context.Context,
	score int,
	maxScore int,
	status string,
	consistency float64,
	categoryScores map[string]int,
) (string, error) {
	model := config.AppConfig.InterpretationModel
	if model == "" {
		return "", errors.New("interpretation model not configured")
	}

	providerKey, modelExists := config.AppConfig.LLMModels[model]
	if !modelExists {
		log.Printf("ERROR: [InterpretationService] Model '%s' is not mapped to any provider.", model)
		return "", fmt.Errorf("model '%s' not found in configuration", model)
	}
	providerConfig, providerExists := config.AppConfig.LLMProviders[providerKey]
	if !providerExists {
		log.Printf("ERROR: [InterpretationService] Provider '%s' for model '%s' is not configured.", providerKey, model)
		return "", fmt.Errorf("provider '%s' not found in configuration", providerKey)
	}
	if providerConfig.APIKey == "" || providerConfig.BaseURL == "" {
		log.Printf("ERROR: [InterpretationService] Provider '%s' is missing API key or base URL.", providerKey)
		return "", errors.New("provider API key or base URL is empty")
	}

	oclient := openai.DefaultConfig(providerConfig.APIKey)
	oclient.BaseURL = providerConfig.BaseURL
	client := openai.NewClientWithConfig(oclient)

	breakdown, err := json.Marshal(categoryScores)
	if err != nil {
		// Marshalling a map[string]int cannot realistically fail, but the
		// narrative is best-effort either way.
		breakdown = []byte("{}")
	}

	prompt := fmt.Sprintf(`Role: Senior Clinical Psychologist.
Task: Provide a brief, empathetic, and professional interpretation of a mental health assessment.

Patient Data:
- Total Score: %d/%d
- Calculated Status: %s
- Consistency Score: %.0f%% (Below 70%% suggests random answering)
- Category Breakdown: %s

Instructions:
1. Summarize the mental health status based on the score.
2. If consistency is low, gently warn that results might not be accurate.
3. Highlight 1-2 specific areas of concern based on category scores.
4. Provide 3 actionable, non-medical self-care recommendations.
5. Tone: Professional, supportive, non-alarmist.
6. Max length: 150 words. Do not use markdown formatting like bolding.`,
		score, maxScore, status, consistency, breakdown)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		log.Printf("ERROR: [InterpretationService] Chat completion request failed (model '%s'): %v", model, err)
		return "", fmt.Errorf("interpretation request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Printf("WARN: [InterpretationService] Model '%s' returned an empty interpretation.", model)
		return "", errors.New("model returned an empty interpretation")
	}

	return resp.Choices[0].Message.Content, nil
}
