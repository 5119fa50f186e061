package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sitegate/internal/cli/config"
	"github.com/yndnr/sitegate/internal/cli/connection"
)

// LoginResult is printed by `login`.
type LoginResult struct {
	Identity  string    `json:"identity" yaml:"identity"`
	Token     string    `json:"token" yaml:"token"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
	Saved     bool      `json:"saved" yaml:"saved"`
}

// SessionResult is printed by `session`.
type SessionResult struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	Identity      string     `json:"identity,omitempty" yaml:"identity,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// LogoutResult is printed by `logout`.
type LogoutResult struct {
	Success bool `json:"success" yaml:"success"`
}

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in as an admin and print the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "identity",
				Aliases:  []string{"u"},
				Usage:    "Admin username",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "secret",
				Aliases:  []string{"p"},
				Usage:    "Admin password",
				EnvVars:  []string{"SITEGATE_SECRET"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Do not store the session in the CLI config file",
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	client, err := newClient(flags)
	if err != nil {
		return err
	}

	resp, err := client.Post(c.Context, "/api/admin/login", "", map[string]string{
		"identity": c.String("identity"),
		"secret":   c.String("secret"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	token := client.SessionToken(resp)

	var body struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := connection.ParseResponse(resp, &body); err != nil {
		return err
	}
	if token == "" {
		return errors.New("server did not set a session cookie")
	}

	result := &LoginResult{
		Identity:  c.String("identity"),
		Token:     token,
		ExpiresAt: body.ExpiresAt,
	}

	if !c.Bool("no-save") {
		cfg := cliConfig(c)
		cfg.Session = &config.SavedSession{
			Server:    client.BaseURL(),
			Identity:  result.Identity,
			Token:     token,
			ExpiresAt: body.ExpiresAt,
		}
		if err := saveConfig(c, cfg); err != nil {
			return err
		}
		result.Saved = true
	}

	return render(c, flags.Output, result)
}

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "Session token (default: the session saved by login)",
		EnvVars: []string{"SITEGATE_TOKEN"},
	}
}

// resolveToken returns the token to send and whether it came from the
// saved session.
func resolveToken(c *cli.Context, client *connection.HTTPClient) (string, bool) {
	if tok := c.String("token"); tok != "" {
		return tok, false
	}
	saved := cliConfig(c).Session
	if saved == nil || !sameServer(saved.Server, client.BaseURL()) || saved.Expired(time.Now()) {
		return "", false
	}
	return saved.Token, true
}

func sameServer(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// forgetSession drops the saved session.
func forgetSession(c *cli.Context) error {
	cfg := cliConfig(c)
	if cfg.Session == nil {
		return nil
	}
	cfg.Session = nil
	return saveConfig(c, cfg)
}

// SessionCommand returns the session command.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"whoami"},
		Usage:   "Check whether a session token is still valid",
		Flags:   []cli.Flag{tokenFlag()},
		Action:  checkSession,
	}
}

func checkSession(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	client, err := newClient(flags)
	if err != nil {
		return err
	}
	token, saved := resolveToken(c, client)

	result := &SessionResult{}
	if token != "" {
		resp, err := client.Get(c.Context, "/api/admin/session", token)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		if err := connection.ParseResponse(resp, result); err != nil {
			return err
		}
	}

	if saved && !result.Authenticated {
		if err := forgetSession(c); err != nil {
			return err
		}
	}
	return render(c, flags.Output, result)
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Revoke a session token",
		Flags:  []cli.Flag{tokenFlag()},
		Action: logout,
	}
}

func logout(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	client, err := newClient(flags)
	if err != nil {
		return err
	}
	token, saved := resolveToken(c, client)

	resp, err := client.Post(c.Context, "/api/admin/logout", token, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	result := &LogoutResult{}
	if err := connection.ParseResponse(resp, result); err != nil {
		return err
	}

	if saved {
		if err := forgetSession(c); err != nil {
			return err
		}
	}
	return render(c, flags.Output, result)
}
