// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// bloc is a terminal client for Revolt chat. It logs in (or resumes a
// saved session), connects to the instance's event stream, and opens a
// channel view.
//
// Configuration comes from a YAML file (--config or the BLOC_CONFIG
// environment variable); --instance, --email, and --state-dir override
// individual fields for one run.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/alexispurslane/bloc/account"
	"github.com/alexispurslane/bloc/chatui"
	"github.com/alexispurslane/bloc/emoji"
	"github.com/alexispurslane/bloc/lib/config"
	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/lib/secret"
	"github.com/alexispurslane/bloc/lib/version"
	"github.com/alexispurslane/bloc/messages"
	"github.com/alexispurslane/bloc/revolt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var instanceURL string
	var email string
	var stateDir string

	flagSet := pflag.NewFlagSet("bloc", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to bloc.yaml (default: $BLOC_CONFIG)")
	flagSet.StringVar(&instanceURL, "instance", "", "instance API URL (overrides config)")
	flagSet.StringVar(&email, "email", "", "account email for login")
	flagSet.StringVar(&stateDir, "state-dir", "", "session state directory (overrides config)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("bloc")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one channel ID argument, got %d", len(args))
	}
	channel, err := ref.ParseChannelID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath, instanceURL)
	if err != nil {
		return err
	}
	if instanceURL != "" {
		cfg.Instance.API = instanceURL
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accounts, err := account.NewRepository(account.RepositoryConfig{
		Store:  account.NewStore(filepath.Join(cfg.StateDir, "state.json"), logger),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if err := ensureLoggedIn(ctx, accounts, cfg, email); err != nil {
		return err
	}
	defer accounts.Session().CloseIdleConnections()

	userSession := accounts.UserSession()
	websocketURL := cfg.Instance.WebSocket
	if websocketURL == "" {
		websocketURL = userSession.WebsocketURL
	}
	autumnURL := cfg.Instance.Autumn
	if autumnURL == "" {
		autumnURL = userSession.AutumnURL
	}

	registry := emoji.NewRegistry()
	store := messages.NewStore()
	enricher := messages.NewEnricher(messages.EnricherConfig{
		Users:  accounts,
		Emojis: registry,
		Logger: logger,
	})
	repository, err := messages.NewRepository(messages.RepositoryConfig{
		Sessions: accounts,
		Store:    store,
		Enricher: enricher,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	reconciler, err := messages.NewReconciler(messages.ReconcilerConfig{
		Store:       store,
		Enricher:    enricher,
		Emojis:      registry,
		EmojiLoader: registry,
		AutumnURL:   autumnURL,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	token, err := secret.NewFromString(userSession.SessionToken)
	if err != nil {
		return err
	}
	defer token.Close()

	socket, err := revolt.NewSocket(revolt.SocketConfig{
		URL:    websocketURL,
		Token:  token,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	go socket.Run(ctx)

	program := tea.NewProgram(
		chatui.NewModel(repository, channel, userSession.UserID),
		tea.WithAltScreen(),
	)

	// Fan the socket's events out to the reconciler and nudge the TUI
	// after each one so it re-reads the cache.
	reconcilerEvents := make(chan revolt.Event, 64)
	go func() {
		defer close(reconcilerEvents)
		for event := range socket.Events() {
			reconcilerEvents <- event
			program.Send(chatui.Refresh{})
		}
	}()
	go reconciler.Run(ctx, reconcilerEvents)

	_, err = program.Run()
	return err
}

// loadConfig loads the YAML config. When --instance is given, a
// missing config file is tolerated and defaults are used.
func loadConfig(configPath, instanceURL string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	cfg, err := config.Load()
	if err != nil && instanceURL != "" {
		return config.Default(), nil
	}
	return cfg, err
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	// The TUI owns the terminal; logs go to a file beside the state.
	logFile, err := os.OpenFile(filepath.Join(cfg.StateDir, "bloc.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})), nil
}

// ensureLoggedIn resumes a saved session or performs an interactive
// login, prompting for the password (and a TOTP code when the account
// requires one) on the terminal.
func ensureLoggedIn(ctx context.Context, accounts *account.Repository, cfg *config.Config, email string) error {
	resumed, err := accounts.Resume()
	if err != nil {
		return err
	}
	if resumed {
		return nil
	}

	if email == "" {
		return fmt.Errorf("no saved session; pass --email to log in")
	}
	if cfg.Instance.API == "" {
		return fmt.Errorf("no instance API URL; set instance.api in the config or pass --instance")
	}

	fmt.Fprintf(os.Stderr, "password for %s: ", email)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password, err := secret.NewFromBytes(raw)
	if err != nil {
		return err
	}
	defer password.Close()

	err = accounts.Login(ctx, cfg.Instance.API, email, password, "bloc terminal")
	var mfaErr *account.MFARequiredError
	if errors.As(err, &mfaErr) {
		fmt.Fprint(os.Stderr, "TOTP code: ")
		var code string
		if _, err := fmt.Fscanln(os.Stdin, &code); err != nil {
			return fmt.Errorf("reading TOTP code: %w", err)
		}
		return accounts.LoginMFA(ctx, cfg.Instance.API, email, revolt.MFALoginRequest{
			MFATicket:    mfaErr.Ticket,
			MFAResponse:  revolt.MFAResponse{TOTPCode: strings.TrimSpace(code)},
			FriendlyName: "bloc terminal",
		})
	}
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `bloc — terminal client for Revolt chat.

Opens a live view of one channel: history pages in with PgUp, new
messages stream in over the websocket, and the input line sends.

Usage:
  bloc [flags] <channel-id>

Flags:
%s`, flagSet.FlagUsages())
}
