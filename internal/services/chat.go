package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/roamly/internal/models"
)

// ChatService covers /chatbot.
type ChatService struct{ c *Client }

// Ask sends a question. An empty conversationID starts a new conversation.
func (s *ChatService) Ask(ctx context.Context, question, conversationID string) (*models.ChatResponse, error) {
	req := models.ChatRequest{Question: question, ConversationID: conversationID}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out models.ChatResponse
	if err := s.c.do(ctx, http.MethodPost, "/chatbot/ask", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
