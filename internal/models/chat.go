package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/roamly/internal/shared"
)

// ChatRequest is the body of POST /chatbot/ask.
type ChatRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: question is required", shared.ErrInvalidInput)
	}
	return nil
}

// MovieSuggestion is a movie the assistant referenced in its answer.
type MovieSuggestion struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"posterPath,omitempty"`
	Rating      float64 `json:"rating"`
	ReleaseYear int     `json:"releaseYear,omitempty"`
}

// ChatResponse is the assistant's answer.
type ChatResponse struct {
	Answer          string            `json:"answer"`
	ConversationID  string            `json:"conversationId"`
	ResponseTime    int64             `json:"responseTime"` // milliseconds
	SuggestedMovies []MovieSuggestion `json:"suggestedMovies,omitempty"`
}
