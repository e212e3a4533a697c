package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/x/term"

	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/internal/session"
	"github.com/oftx/dailyfortune/internal/tui"
	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
	"github.com/oftx/dailyfortune/pkg/fortune"
)

var errUsage = errors.New("invalid arguments")

// start restores the stored session. Every command except logout calls it
// first so the session can refresh itself.
func (c *cli) start(ctx context.Context) (session.State, error) {
	state, err := c.session.Start(ctx, c.client)
	if err != nil {
		return state, fmt.Errorf("start session: %w", err)
	}
	return state, nil
}

// requireAuth returns the signed-in profile and switches output to the
// profile's language.
func (c *cli) requireAuth(ctx context.Context) (domain.Profile, error) {
	if _, err := c.start(ctx); err != nil {
		return domain.Profile{}, err
	}
	p, ok := c.session.Profile()
	if !ok {
		return domain.Profile{}, fmt.Errorf("%s (run dailyfortune login <username>)", c.printer.Sprintf(i18n.MsgAnonymous))
	}
	c.printer = i18n.PrinterFor(p.Language, c.cfg.Lang)
	return p, nil
}

// readPassword prompts on out. Echo is disabled when in is a terminal.
func (c *cli) readPassword() (string, error) {
	fmt.Fprint(c.out, c.printer.Sprintf(i18n.MsgPassword)) //nolint:errcheck
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(c.out) //nolint:errcheck
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

func (c *cli) runLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: dailyfortune login <username>", errUsage)
	}
	if _, err := c.start(ctx); err != nil {
		return err
	}
	password, err := c.readPassword()
	if err != nil {
		return err
	}
	auth, err := c.client.Login(ctx, args[0], password)
	if err != nil {
		return errors.New(c.errText(err))
	}
	return c.signIn(ctx, auth)
}

func (c *cli) runRegister(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: dailyfortune register <username> <email>", errUsage)
	}
	if _, err := c.start(ctx); err != nil {
		return err
	}
	status, err := c.client.GetRegistrationStatus(ctx)
	if err != nil {
		return errors.New(c.errText(err))
	}
	if !status.IsOpen {
		return errors.New(c.printer.Sprintf(i18n.MsgRegClosed))
	}
	password, err := c.readPassword()
	if err != nil {
		return err
	}
	auth, err := c.client.Register(ctx, args[0], args[1], password)
	if err != nil {
		return errors.New(c.errText(err))
	}
	return c.signIn(ctx, auth)
}

func (c *cli) signIn(ctx context.Context, auth *domain.AuthResponse) error {
	if err := c.session.Login(auth.AccessToken, auth.User); err != nil {
		return err
	}
	// Pulls the next draw time, which the auth response lacks.
	if err := c.session.Sync(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("sync after login")
	}
	c.printer = i18n.PrinterFor(auth.User.Language, c.cfg.Lang)
	fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgSignedInAs, auth.User.Name())) //nolint:errcheck
	if c.cfg.Token != "" {
		fmt.Fprintln(c.out, "DAILYFORTUNE_TOKEN is set; the new token was not saved") //nolint:errcheck
	}
	return nil
}

func (c *cli) runLogout(_ context.Context) error {
	if err := c.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgLoggedOut)) //nolint:errcheck
	return nil
}

// runDraw draws on the server when signed in. Anonymous users get a local
// draw that is not recorded anywhere.
func (c *cli) runDraw(ctx context.Context) error {
	state, err := c.start(ctx)
	if err != nil {
		return err
	}
	if state != session.Authenticated {
		f := fortune.DrawLocal()
		fmt.Fprintln(c.out, fortuneCard(f)) //nolint:errcheck
		fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgLocalDraw, tui.FortuneStyle(f).Render(string(f)))) //nolint:errcheck
		return nil
	}

	p, _ := c.session.Profile()
	c.printer = i18n.PrinterFor(p.Language, c.cfg.Lang)
	if at, ok := c.session.NextDrawAt(); ok {
		if left := domain.Remaining(c.now(), at); left > 0 {
			if f, ok := p.Today(); ok {
				fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgAlreadyDrawn, tui.FortuneStyle(f).Render(string(f)))) //nolint:errcheck
			}
			fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgNextDraw, domain.FormatCountdown(left))) //nolint:errcheck
			return nil
		}
	}

	res, err := c.client.DrawFortune(ctx)
	if err != nil {
		return errors.New(c.errText(err))
	}
	c.session.SetNextDrawAt(res.NextDrawAt.TimePtr())
	c.logger.Info().Str("fortune", string(res.Fortune)).Msg("drew fortune")

	fmt.Fprintln(c.out, fortuneCard(res.Fortune)) //nolint:errcheck
	if at, ok := c.session.NextDrawAt(); ok {
		fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgNextDraw, domain.FormatCountdown(domain.Remaining(c.now(), at)))) //nolint:errcheck
	}
	return nil
}

func (c *cli) runStatus(ctx context.Context) error {
	state, err := c.start(ctx)
	if err != nil {
		return err
	}
	if state != session.Authenticated {
		fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgAnonymous)) //nolint:errcheck
		return nil
	}
	p, _ := c.session.Profile()
	c.printer = i18n.PrinterFor(p.Language, c.cfg.Lang)

	line := c.printer.Sprintf(i18n.MsgSignedInAs, p.Name())
	if p.IsAdmin() {
		line += " (admin)"
	}
	fmt.Fprintln(c.out, line) //nolint:errcheck

	if claims, err := session.TokenClaims(c.session.Token()); err == nil {
		switch {
		case claims.Expired(c.now()):
			fmt.Fprintln(c.out, "token expired") //nolint:errcheck
		case claims.ExpiresAt != nil:
			fmt.Fprintf(c.out, "token expires %s\n", claims.ExpiresAt.In(p.Location()).Format("2006-01-02 15:04")) //nolint:errcheck
		}
	} else {
		c.logger.Debug().Err(err).Msg("token claims")
	}

	if f, ok := p.Today(); ok {
		fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgAlreadyDrawn, tui.FortuneStyle(f).Render(string(f)))) //nolint:errcheck
	}
	if at, ok := c.session.NextDrawAt(); ok && domain.Remaining(c.now(), at) > 0 {
		fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgNextDraw, domain.FormatCountdown(domain.Remaining(c.now(), at)))) //nolint:errcheck
	} else {
		fmt.Fprintln(c.out, c.printer.Sprintf(i18n.MsgDrawAvailable)) //nolint:errcheck
	}
	fmt.Fprintf(c.out, "%d draws since %s\n", p.TotalDraws, p.RegistrationDate.In(p.Location()).Format(domain.DayLayout)) //nolint:errcheck
	return nil
}

func (c *cli) runLeaderboard(ctx context.Context) error {
	me, err := c.requireAuth(ctx)
	if err != nil {
		return err
	}
	groups, err := c.client.GetLeaderboard(ctx)
	if err != nil {
		return errors.New(c.errText(err))
	}
	domain.SortGroups(groups)
	if len(groups) == 0 {
		fmt.Fprintln(c.out, "nobody has drawn yet today") //nolint:errcheck
		return nil
	}
	for _, g := range groups {
		names := make([]string, 0, len(g.Users))
		for _, u := range g.Users {
			name := u.Name()
			if u.Username == me.Username {
				name += " (you)"
			}
			names = append(names, name)
		}
		fmt.Fprintf(c.out, "%s  %s\n", tui.FortuneStyle(g.Fortune).Render(padFortune(g.Fortune)), strings.Join(names, ", ")) //nolint:errcheck
	}
	return nil
}

// padFortune pads labels to two cells so names line up.
func padFortune(f domain.Fortune) string {
	if len([]rune(string(f))) == 1 {
		return string(f) + "  "
	}
	return string(f)
}

func (c *cli) runHistory(ctx context.Context, args []string) error {
	me, err := c.requireAuth(ctx)
	if err != nil {
		return err
	}
	username := me.Username
	if len(args) > 0 {
		username = strings.TrimPrefix(args[0], "@")
	}
	items, err := c.client.GetUserFortuneHistory(ctx, username)
	if err != nil {
		return errors.New(c.errText(err))
	}
	domain.SortHistory(items)
	loc := me.Location()
	for _, it := range items {
		fmt.Fprintf(c.out, "%s  %s\n", domain.DayKey(it.CreatedAt.Time, loc), tui.FortuneStyle(it.Value).Render(string(it.Value))) //nolint:errcheck
	}
	fmt.Fprintf(c.out, "%d draws\n", len(items)) //nolint:errcheck
	return nil
}

func (c *cli) runAdmin(ctx context.Context, args []string) error {
	const usage = "usage: dailyfortune admin users | status <user> <active|inactive> | hide <user> | show <user> | tags <user> [a,b,...]"
	if len(args) == 0 {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	// The server decides who is an admin; its 403 detail is shown as is.
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	users, err := c.client.ListUsers(ctx)
	if err != nil {
		return errors.New(c.errText(err))
	}
	if args[0] == "users" {
		for _, u := range users {
			flags := []string{u.Status}
			if u.IsAdmin() {
				flags = append(flags, "admin")
			}
			if u.IsHidden {
				flags = append(flags, "hidden")
			}
			if len(u.Tags) > 0 {
				flags = append(flags, "tags="+strings.Join(u.Tags, ","))
			}
			fmt.Fprintf(c.out, "%-20s %s  %s\n", u.Username, u.ID, strings.Join(flags, " ")) //nolint:errcheck
		}
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	target, ok := findUser(users, args[1])
	if !ok {
		return fmt.Errorf("no user %q", args[1])
	}

	switch args[0] {
	case "status":
		if len(args) != 3 || !slices.Contains([]string{domain.StatusActive, domain.StatusInactive}, args[2]) {
			return fmt.Errorf("%w: %s", errUsage, usage)
		}
		err = c.client.SetUserStatus(ctx, target.ID, args[2])
	case "hide", "show":
		err = c.client.SetUserVisibility(ctx, target.ID, args[0] == "hide")
	case "tags":
		err = c.client.SetUserTags(ctx, target.ID, domain.ParseTags(strings.Join(args[2:], ",")))
	default:
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	if err != nil {
		return errors.New(c.errText(err))
	}
	c.logger.Info().Str("action", args[0]).Str("user", target.Username).Msg("admin action")
	fmt.Fprintf(c.out, "%s: %s\n", target.Username, args[0]) //nolint:errcheck
	return nil
}

// findUser matches a username (with or without @) or a user id.
func findUser(users []domain.Profile, key string) (domain.Profile, bool) {
	key = strings.TrimPrefix(key, "@")
	for _, u := range users {
		if u.Username == key || u.ID == key {
			return u, true
		}
	}
	return domain.Profile{}, false
}

func (c *cli) errText(err error) string {
	c.logger.Debug().Err(err).Msg("request failed")
	return client.Message(err, c.printer)
}
