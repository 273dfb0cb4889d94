package session

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roamly/internal/services"
	"github.com/desertthunder/roamly/internal/shared"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "Server Message", err: &services.APIError{Status: 400, Message: "Name taken"}, want: "Name taken"},
		{name: "Blank Server Message", err: &services.APIError{Status: 500}, want: "fallback"},
		{name: "Mismatch", err: shared.ErrPasswordMismatch, want: "Passwords do not match"},
		{name: "Validation", err: fmt.Errorf("%w: username is required", shared.ErrInvalidInput), want: "Username is required"},
		{name: "Other", err: shared.ErrServiceUnavailable, want: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err, "fallback"); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotifiers(t *testing.T) {
	t.Run("Recorder", func(t *testing.T) {
		r := &Recorder{}
		if _, ok := r.Last(); ok {
			t.Error("empty recorder should have no last notification")
		}
		r.Notify(Info("one"))
		r.Notify(Success("two"))

		if last, _ := r.Last(); last.Message != "two" {
			t.Errorf("Last() = %q", last.Message)
		}
		if got := r.Drain(); len(got) != 2 {
			t.Errorf("Drain() returned %d", len(got))
		}
		if len(r.All()) != 0 {
			t.Error("Drain should empty the recorder")
		}
	})

	t.Run("Writer", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriterNotifier(&buf)
		w.Notify(Success("Login successful!"))
		w.Notify(Error("Login failed"))

		out := buf.String()
		if !strings.Contains(out, "Login successful!") || !strings.Contains(out, "Login failed") {
			t.Errorf("unexpected output %q", out)
		}
		if strings.Count(out, "\n") != 2 {
			t.Errorf("expected two lines, got %q", out)
		}
	})

	t.Run("Log", func(t *testing.T) {
		var buf bytes.Buffer
		LogNotifier{Logger: log.New(&buf)}.Notify(Error("boom"))
		if !strings.Contains(buf.String(), "boom") {
			t.Errorf("log output %q", buf.String())
		}
	})

	t.Run("Multi", func(t *testing.T) {
		a, b := &Recorder{}, &Recorder{}
		Multi{a, nil, b}.Notify(Info("hi"))
		if len(a.All()) != 1 || len(b.All()) != 1 {
			t.Error("expected fan-out to both recorders")
		}
	})

	t.Run("NotifyError Ignores Nil", func(t *testing.T) {
		r := &Recorder{}
		NotifyError(r, nil, "x")
		NotifyError(nil, shared.ErrAuthFailed, "x")
		if len(r.All()) != 0 {
			t.Error("expected no notifications")
		}
	})
}
