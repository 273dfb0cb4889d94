package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/roamly/internal/services"
	"github.com/desertthunder/roamly/internal/shared"
)

// Level classifies a [Notification].
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a short user-visible message, the terminal counterpart of a toast.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Info, Success and Error build notifications stamped with the current time.
func Info(msg string) Notification    { return Notification{Level: LevelInfo, Message: msg, At: time.Now()} }
func Success(msg string) Notification { return Notification{Level: LevelSuccess, Message: msg, At: time.Now()} }
func Error(msg string) Notification   { return Notification{Level: LevelError, Message: msg, At: time.Now()} }

// NotifyError reports err, preferring the server's message and falling back to fallback.
func NotifyError(n Notifier, err error, fallback string) {
	if n == nil || err == nil {
		return
	}
	n.Notify(Error(ErrorMessage(err, fallback)))
}

// ErrorMessage picks the text shown for err: the server message, a client-side validation message, or fallback.
func ErrorMessage(err error, fallback string) string {
	if msg := services.MessageOf(err, ""); msg != "" {
		return msg
	}
	switch {
	case errors.Is(err, shared.ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.Is(err, shared.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), shared.ErrInvalidInput.Error()+": ")
		if msg == "" {
			return fallback
		}
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	return fallback
}

// LogNotifier writes notifications to a [log.Logger].
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(n Notification) {
	if l.Logger == nil {
		return
	}
	switch n.Level {
	case LevelError:
		l.Logger.Error(n.Message)
	default:
		l.Logger.Info(n.Message, "level", n.Level)
	}
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87FF"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
)

// WriterNotifier prints one styled line per notification, for the CLI.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var prefix string
	switch note.Level {
	case LevelSuccess:
		prefix = successStyle.Render("✓")
	case LevelError:
		prefix = errorStyle.Render("✗")
	default:
		prefix = infoStyle.Render("•")
	}
	fmt.Fprintf(n.w, "%s %s\n", prefix, note.Message)
}

// Recorder keeps notifications in memory. The TUI reads [Recorder.Last] for its status bar; the web front drains it into flash messages.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

// All returns a copy of every notification recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

// Last returns the newest notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

// Drain returns and forgets every recorded notification.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notes
	r.notes = nil
	return out
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(n)
		}
	}
}
