package mpd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	gompd "github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/term"
)

// RequiredCommands must be allowed on the connection for shuffling to work.
var RequiredCommands = []string{"add", "status", "play", "pause", "idle"}

// ErrUnauthorized is returned when required commands stay forbidden after
// any password has been applied.
var ErrUnauthorized = errors.New("required mpd commands not allowed")

// WatchedEvents are the idle subsystems the watcher subscribes to.
var WatchedEvents = NewEventSet(EventDatabase, EventQueue, EventPlayer)

// PasswordPrompt asks the user for a password.
type PasswordPrompt func() (string, error)

// ttyPath is the controlling terminal. Stdin may be the URI list.
var ttyPath = "/dev/tty"

// TerminalPrompt reads a password from the controlling terminal without
// echoing it, falling back to stdin when there is no tty.
func TerminalPrompt() (string, error) {
	in, out, closeTTY := promptFiles()
	defer closeTTY()
	return readPassword(in, out)
}

func promptFiles() (*os.File, io.Writer, func()) {
	tty, err := os.OpenFile(ttyPath, os.O_RDWR, 0)
	if err != nil {
		return os.Stdin, os.Stderr, func() {}
	}
	return tty, tty, func() { _ = tty.Close() }
}

func readPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.Newf("%s is not a terminal", in.Name())
	}
	fmt.Fprint(out, "mpd password: ")
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(pass), nil
}

// Connect dials MPD, authenticates and starts the idle watcher.
//
// A password in addr is always applied. If required commands are still not
// allowed and no password was given, prompt is asked until MPD accepts a
// password or prompt fails.
func Connect(ctx context.Context, addr Address, prompt PasswordPrompt) (*Client, error) {
	c, err := Dial(addr)
	if err != nil {
		return nil, err
	}

	if err := c.authorize(ctx, prompt); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.startWatcher(WatchedEvents); err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Debug().Str("addr", addr.String()).Str("protocol", c.Version()).Msg("connected to mpd")
	return c, nil
}

func (c *Client) authorize(ctx context.Context, prompt PasswordPrompt) error {
	supplied := c.addr.Password != ""
	if supplied {
		// Rejection is fine here; the command check below decides. The
		// watcher must not resend a rejected password.
		if err := c.ApplyPassword(ctx, c.addr.Password); err != nil {
			log.Warn().Err(err).Msg("mpd rejected supplied password")
			c.addr.Password = ""
		}
	}

	missing, err := c.MissingCommands(ctx, RequiredCommands)
	if err != nil {
		return err
	}
	if len(missing) > 0 && !supplied && prompt != nil {
		if err := c.promptPassword(ctx, prompt); err != nil {
			return err
		}
		if missing, err = c.MissingCommands(ctx, RequiredCommands); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrUnauthorized, "missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Client) promptPassword(ctx context.Context, prompt PasswordPrompt) error {
	for {
		pass, err := prompt()
		if err != nil {
			return errors.Wrap(err, "prompt for mpd password")
		}
		err = c.ApplyPassword(ctx, pass)
		if err == nil {
			// The watcher opens its own connection and needs the password too.
			c.addr.Password = pass
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(os.Stderr, "incorrect password.")
	}
}

// ApplyPassword sends the password command. A rejected password is an error.
func (c *Client) ApplyPassword(ctx context.Context, password string) error {
	return c.do(ctx, func(conn *gompd.Client) error {
		return errors.Wrap(conn.Command("password %s", password).OK(), "mpd password")
	})
}

// MissingCommands returns the entries of required the connection may not run.
func (c *Client) MissingCommands(ctx context.Context, required []string) ([]string, error) {
	var allowed []string
	err := c.do(ctx, func(conn *gompd.Client) (err error) {
		allowed, err = conn.Command("commands").Strings("command")
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "mpd commands")
	}
	return lo.Without(required, allowed...), nil
}
