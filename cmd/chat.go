package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// ChatAsk asks the recommendation assistant one question.
func (r *Runner) ChatAsk(ctx context.Context, cmd *cli.Command) error {
	question := strings.TrimSpace(cmd.StringArg("question"))
	if question == "" {
		return fmt.Errorf("%w: question", shared.ErrMissingArgument)
	}

	resp, err := r.client.Chat.Ask(ctx, question, cmd.String("conversation"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgChatFailed)
	}
	return r.emit(cmd, resp, func() error { return r.printAnswer(resp, true) })
}

// ChatREPL reads questions from input until EOF or "exit", keeping one conversation.
func (r *Runner) ChatREPL(ctx context.Context, cmd *cli.Command) error {
	conv := r.actions.NewConversation()
	r.writePlain("Ask for a recommendation. Type /new to start over, exit to quit.\n\n")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		r.writePlain("you: ")
		line, err := r.input.ReadString('\n')
		question := strings.TrimSpace(line)
		if err != nil && question == "" {
			if err == io.EOF {
				r.writePlain("\n")
				return nil
			}
			return err
		}

		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/new":
			conv.Reset()
			r.writePlain("Started a new conversation.\n\n")
			continue
		}

		resp, askErr := conv.Ask(ctx, question)
		if askErr == nil {
			r.printAnswer(resp, false)
		}
		if err == io.EOF {
			return nil
		}
	}
}

func (r *Runner) printAnswer(resp *models.ChatResponse, withID bool) error {
	r.writePlain("\n%s\n", resp.Answer)
	if len(resp.SuggestedMovies) > 0 {
		r.writePlain("\nSuggested:\n")
		for _, m := range resp.SuggestedMovies {
			if m.ReleaseYear > 0 {
				r.writePlain("  %d. %s (%d)  %.1f\n", m.ID, m.Title, m.ReleaseYear, m.Rating)
			} else {
				r.writePlain("  %d. %s  %.1f\n", m.ID, m.Title, m.Rating)
			}
		}
	}
	if withID && resp.ConversationID != "" {
		r.writePlain("\nConversation: %s\n", resp.ConversationID)
	}
	return r.writePlain("\n")
}
