package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lyrnios-backend/internal/ai"
	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/pkg/aijson"
	"lyrnios-backend/internal/pkg/mermaid"
)

const generateSystemPrompt = `You are a tutor that explains topics with a short written answer and a diagram.
Reply with a single JSON object and nothing else. The object must contain:
- "answer": the explanation as markdown text
- "mermaid_diagram": a mermaid flowchart that summarizes the answer, starting with "graph TD"
Keep node labels short and put every label inside square brackets.`

type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type GenerateService struct {
	completer  Completer
	chat       *ChatService
	normalizer *mermaid.Normalizer
	log        *zap.Logger
}

type GenerateInput struct {
	UserID    uint
	Prompt    string
	SessionID string
}

func NewGenerateService(completer Completer, chat *ChatService, normalizer *mermaid.Normalizer, log *zap.Logger) *GenerateService {
	if log == nil {
		log = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = mermaid.NewNormalizer(log)
	}
	return &GenerateService{
		completer:  completer,
		chat:       chat,
		normalizer: normalizer,
		log:        log,
	}
}

// Generate asks the model for an answer object and returns it with the
// diagram field normalized. With a session id the prompt and the result are
// stored in that session, which is created for the caller if needed.
func (s *GenerateService) Generate(ctx context.Context, input GenerateInput) (map[string]any, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, ErrInvalidInput
	}

	persist := input.SessionID != ""
	if persist {
		if _, err := s.chat.EnsureSession(ctx, input.UserID, input.SessionID); err != nil {
			return nil, err
		}
		if _, err := s.chat.AddMessage(ctx, AddMessageInput{
			UserID:    input.UserID,
			SessionID: input.SessionID,
			Role:      model.RoleUser,
			Content:   &prompt,
		}); err != nil {
			return nil, err
		}
	}

	raw, err := s.completer.Complete(ctx, []ai.ChatMessage{
		{Role: "system", Content: generateSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.log.Error("ai completion failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	result, err := aijson.ParseObject(raw)
	if err != nil {
		s.log.Error("parse ai output failed", zap.Error(err), zap.String("raw", raw))
		return nil, err
	}
	applyDiagram(result, s.normalizer, true)

	if persist {
		s.persistResult(ctx, input.SessionID, result)
	}
	return result, nil
}

// persistResult stores the assistant reply. The generated result is still
// returned to the caller when storing it fails.
func (s *GenerateService) persistResult(ctx context.Context, sessionID string, result map[string]any) {
	data, err := json.Marshal(result)
	if err != nil {
		s.log.Error("marshal generate result failed", zap.Error(err))
		return
	}
	if err := s.chat.EnqueueMessage(ctx, model.PendingMessage{
		SessionID: sessionID,
		Role:      model.RoleAssistant,
		Data:      data,
	}); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("persist assistant message failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
