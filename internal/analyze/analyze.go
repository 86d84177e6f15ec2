package analyze

import (
	"context"
	"fmt"
	"strings"

	"meeting-secretary/internal/config"
	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/pipeline"
)

const analysisInstruction = `You are an assistant that analyzes meeting transcripts.
From the transcript, extract:
1. Participants (name/role)
2. Main topics and questions discussed
3. Decisions taken
4. Responsible parties and their deadlines
Report only what the transcript supports.`

const protocolInstruction = `Render the meeting analysis into an official meeting protocol
following this template:
Participants: [list]
Agenda: [list of topics]
Decisions:
1. [text] (Responsible: [name], Due: [date])
...`

const (
	analysisTemperature = 0.2
	protocolTemperature = 0.5
	maxOutputTokens     = 2000
)

// Service performs both LLM-backed stages: transcript analysis and
// protocol composition. One client is built at startup and shared
// across runs.
type Service struct {
	gen    generator
	logger logger.Logger
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	gen, err := newGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Service{gen: gen, logger: log}, nil
}

// Analyze extracts the structured meeting content from a transcript.
func (s *Service) Analyze(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", pipeline.Failf(pipeline.FailAnalysis, "transcript is empty")
	}

	out, err := s.gen.generate(ctx, analysisInstruction, transcript, analysisTemperature, maxOutputTokens)
	if err != nil {
		return "", pipeline.Failf(pipeline.FailAnalysis, "analyze transcript: %v", err)
	}

	s.logger.Debug(ctx, "Analysis produced %d characters", len(out))
	return out, nil
}

// Compose renders the analysis into the final protocol text.
func (s *Service) Compose(ctx context.Context, analysis string) (string, error) {
	out, err := s.gen.generate(ctx, protocolInstruction, analysis, protocolTemperature, maxOutputTokens)
	if err != nil {
		return "", pipeline.Failf(pipeline.FailComposition, "compose protocol: %v", err)
	}

	s.logger.Debug(ctx, "Protocol produced %d characters", len(out))
	return out, nil
}
