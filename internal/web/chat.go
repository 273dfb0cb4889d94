package web

import (
	"net/http"
	"strings"

	"github.com/desertthunder/roamly/internal/models"
)

// chatTurn is one question and the answer it got, if any.
type chatTurn struct {
	Question string
	Answer   *models.ChatResponse
}

type chatData struct {
	ConversationID string
	Turns          []chatTurn
}

func (a *App) chatPage(w http.ResponseWriter, r *http.Request) {
	a.chatMu.Lock()
	d := chatData{ConversationID: a.chat.ID(), Turns: append([]chatTurn(nil), a.turns...)}
	a.chatMu.Unlock()
	a.render(w, r, http.StatusOK, "chat", "Ask Roamly", d)
}

func (a *App) ask(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		back(w, r, "/chat")
		return
	}

	a.chatMu.Lock()
	defer a.chatMu.Unlock()
	resp, err := a.chat.Ask(r.Context(), question)
	if err != nil {
		resp = nil
	}
	a.turns = append(a.turns, chatTurn{Question: question, Answer: resp})
	back(w, r, "/chat")
}

func (a *App) resetChat(w http.ResponseWriter, r *http.Request) {
	a.chatMu.Lock()
	a.chat.Reset()
	a.turns = nil
	a.chatMu.Unlock()
	back(w, r, "/chat")
}
