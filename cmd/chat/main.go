// Package main is a terminal front end for the study helper: one line of
// input is one turn, replies are printed as they come back.
//
// Messages with the user role are requests meant for an external language
// model; the REPL prints them marked so they can be piped elsewhere.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/xuexi-helper/study-helper/config"
	"github.com/xuexi-helper/study-helper/internal/application/command"
	"github.com/xuexi-helper/study-helper/internal/application/dialogue"
	"github.com/xuexi-helper/study-helper/internal/application/eventhandler"
	"github.com/xuexi-helper/study-helper/internal/application/query"
	"github.com/xuexi-helper/study-helper/internal/domain/session"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/bank"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/messaging"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/document"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/sqlite"
)

const (
	prompt          = "> "
	forwardedPrefix = "[→ 语言模型] "
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Logs go to stderr so stdout carries only the conversation.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := openLocalStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	repos := document.NewRepositories(store, time.Now, log)

	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{Logger: log})
	defer bus.Close()
	onAnswer := eventhandler.NewOnAnswerRecordedHandler(repos.Tasks, repos.Pet, repos.Team, cfg.Features, time.Now, log)
	if err := bus.Subscribe(shared.EventAnswerRecorded, onAnswer.Handle); err != nil {
		return err
	}

	router, err := dialogue.NewRouter(dialogue.Dependencies{
		Sessions: session.NewStore(session.StoreConfig{
			MaxHistory:   cfg.Session.MaxHistory,
			DefaultGrade: shared.Grade(cfg.Session.DefaultGrade),
			Clock:        time.Now,
			Logger:       log,
		}),
		Questions:  bank.New(),
		Recorder:   command.NewRecordAnswerHandler(repos.Progress, bus, time.Now, log),
		Progress:   query.NewGetProgressHandler(repos.Progress, time.Now),
		Tasks:      repos.Tasks,
		Pets:       repos.Pet,
		Challenges: repos.Challenge,
		Teams:      repos.Team,
		Publisher:  bus,
		Features:   cfg.Features,
		NewID:      uuid.NewString,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	userID := os.Getenv("CHAT_USER_ID")
	if userID == "" {
		userID = session.DefaultUserID
	}
	return loop(ctx, router, userID, in, out)
}

// loop reads turns until EOF, "exit" or cancellation.
func loop(ctx context.Context, turns interface {
	Handle(context.Context, dialogue.Turn) ([]dialogue.Message, error)
}, userID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, prompt)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			fmt.Fprint(out, prompt)
			continue
		case "exit", "quit", "退出":
			fmt.Fprintln(out, "再见～")
			return nil
		}

		msgs, err := turns.Handle(ctx, dialogue.Turn{Text: text, UserID: userID})
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			fmt.Fprintln(out, "哎呀，小助手刚才走神了，请再说一遍吧～")
		}
		for _, m := range msgs {
			if m.Role == shared.RoleUser {
				fmt.Fprintln(out, forwardedPrefix+m.Content)
				continue
			}
			fmt.Fprintln(out, m.Content)
		}
		fmt.Fprint(out, prompt)
	}
	return scanner.Err()
}

// openLocalStore opens the backends that make sense for a single terminal
// user. Remote backends belong to cmd/bot.
func openLocalStore(ctx context.Context, cfg *config.Config) (document.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return document.NewFileStore(cfg.Storage.Dir)
	case config.BackendSQLite:
		return sqlite.Open(ctx, cfg.Storage.SQLitePath)
	case config.BackendMemory:
		return document.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage backend %q is not available in the terminal client; use memory, file or sqlite", cfg.Storage.Backend)
	}
}
