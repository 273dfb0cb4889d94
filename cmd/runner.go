package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/guard"
	"github.com/desertthunder/roamly/internal/services"
	"github.com/desertthunder/roamly/internal/session"
	"github.com/desertthunder/roamly/internal/shared"
	"github.com/desertthunder/roamly/internal/tasks"
	"github.com/desertthunder/roamly/internal/tokens"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	tokens     tokens.Store
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	notices    io.Writer
	input      *bufio.Reader

	client  *services.Client
	session *session.Store
	actions *actions.Actions
	engine  *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Tokens     tokens.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Notices    io.Writer // status lines from actions; defaults to stderr
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a token store the runner keeps tokens in memory, which only suits tests.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Notices == nil {
		opts.Notices = os.Stderr
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Tokens == nil {
		opts.Tokens = tokens.NewStorageStore(tokens.NewMemoryStorage())
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		tokens:     opts.Tokens,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		notices:    opts.Notices,
		input:      bufio.NewReader(opts.Input),
	}
	r.connect()
	return r
}

// SetLogger swaps the logger and rebuilds everything that captured the old one.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.connect()
}

func (r *Runner) connect() {
	r.client = services.NewClient(services.ClientOpts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: r.httpClient,
		Tokens:     r.tokens,
		Logger:     shared.WithLogger(r.logger, "component", "client"),
		UserAgent:  r.config.API.UserAgent,
		Timeout:    r.config.API.Timeout.Duration,
	})
	r.session, r.actions = r.build(session.NewWriterNotifier(r.notices))
	r.engine = tasks.NewEngine(tasks.EngineOpts{
		Watchlists: r.client.Watchlists,
		Importer:   r.client.Admin,
		Logger:     shared.WithLogger(r.logger, "component", "tasks"),
		Config:     r.config.Tasks,
	})
}

// build wires a session and actions that report to notifier. The TUI and the
// web front build their own pair around a [session.Recorder].
func (r *Runner) build(notifier session.Notifier) (*session.Store, *actions.Actions) {
	sess := session.New(session.Opts{
		Auth:     r.client.Auth,
		Profile:  r.client.Profile,
		Tokens:   r.tokens,
		Notifier: notifier,
		Logger:   shared.WithLogger(r.logger, "component", "session"),
	})
	return sess, actions.New(r.client, notifier, shared.WithLogger(r.logger, "component", "actions"))
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, moviesCommand, ratingsCommand,
		watchlistsCommand, adminCommand, chatCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// guarded hydrates the session and checks req before running action.
//
// Public commands skip hydration; they work with or without a login.
func (r *Runner) guarded(req guard.Requirement, action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if req != guard.Public {
			r.session.Hydrate(ctx)
			if err := guard.Check(r.session.Snapshot(), req); err != nil {
				return err
			}
		}
		return action(ctx, cmd)
	}
}

// emit writes data as JSON when --json is set, and calls plain otherwise.
func (r *Runner) emit(cmd *cli.Command, data any, plain func() error) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}
	return plain()
}

// prompt reads one line from the runner's input.
func (r *Runner) prompt(label string) (string, error) {
	if err := r.writePlain("%s: ", label); err != nil {
		return "", err
	}
	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.ToLower(label))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// parseID parses a positional numeric id.
func parseID(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// argID reads the StringArg named name as an id.
func argID(cmd *cli.Command, name string) (int64, error) {
	return parseID(name, cmd.StringArg(name))
}
