package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oftx/dailyfortune/internal/config"
	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/internal/log"
	"github.com/oftx/dailyfortune/internal/session"
	"github.com/oftx/dailyfortune/internal/tui"
	"github.com/oftx/dailyfortune/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries what every command needs. Commands write to out and read
// prompts from in so tests can drive them.
type cli struct {
	cfg     config.Config
	logger  zerolog.Logger
	session *session.Session
	client  *client.Client
	lang    language.Tag
	printer *message.Printer
	out     io.Writer
	in      io.Reader
	now     func() time.Time
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Println("dailyfortune " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := log.OpenFile(cfg.Home)
	if err != nil {
		return err
	}
	defer logFile.Close() //nolint:errcheck
	logger := log.New(cfg.LogLevel, logFile)

	c := newCLI(cfg, logger, os.Stdout, os.Stdin)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(args) == 0 {
		return c.runTUI()
	}
	return c.dispatch(ctx, args)
}

// newCLI wires the session and client from cfg. A DAILYFORTUNE_TOKEN
// overrides the token file and is never written back to disk.
func newCLI(cfg config.Config, logger zerolog.Logger, out io.Writer, in io.Reader) *cli {
	var store session.TokenStore = session.NewFileStore(cfg.TokenPath())
	if cfg.Token != "" {
		store = session.NewMemoryStore(cfg.Token)
	}
	sess := session.New(store, logger)
	lang := i18n.ResolveTag(cfg.Lang)

	return &cli{
		cfg:     cfg,
		logger:  logger,
		session: sess,
		client: client.New(cfg.APIURL, sess,
			client.WithTimeout(cfg.Timeout),
			client.WithLogger(logger),
			client.WithLanguage(lang),
		),
		lang:    lang,
		printer: i18n.Printer(lang),
		out:     out,
		in:      in,
		now:     time.Now,
	}
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.runLogin(ctx, rest)
	case "register":
		return c.runRegister(ctx, rest)
	case "logout":
		return c.runLogout(ctx)
	case "draw":
		return c.runDraw(ctx)
	case "status":
		return c.runStatus(ctx)
	case "leaderboard", "board":
		return c.runLeaderboard(ctx)
	case "history":
		return c.runHistory(ctx, rest)
	case "admin":
		return c.runAdmin(ctx, rest)
	}
	return fmt.Errorf("unknown command %q (try dailyfortune help)", cmd)
}

func (c *cli) runTUI() error {
	c.logger.Info().Str("version", version).Str("api", c.cfg.APIURL).Msg("starting tui")
	app := tui.NewApp(c.client, c.session, c.lang)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
