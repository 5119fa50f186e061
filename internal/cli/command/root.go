package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sitegate/internal/cli/config"
	"github.com/yndnr/sitegate/internal/cli/connection"
	"github.com/yndnr/sitegate/internal/cli/output"
	"github.com/yndnr/sitegate/internal/infra/buildinfo"
	"github.com/yndnr/sitegate/internal/infra/tlsroots"
)

const (
	metaConfig     = "cliConfig"
	metaConfigPath = "cliConfigPath"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sitegate-cli",
		Usage:   "SiteGate admin command-line tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			SessionCommand(),
			LogoutCommand(),
			DigestCommand(),
			HealthCommand(),
			ReadyCommand(),
		},
		Before:   loadConfig,
		Metadata: map[string]any{},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "SiteGate server URL",
			EnvVars: []string{"SITEGATE_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:    "cookie-name",
			Usage:   "Admin session cookie name",
			EnvVars: []string{"SITEGATE_COOKIE_NAME"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
			Value: connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file with extra CA certificates for https servers",
			EnvVars: []string{"SITEGATE_CA_FILE"},
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "Skip TLS certificate verification",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"SITEGATE_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

func loadConfig(c *cli.Context) error {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaConfigPath] = path
	return nil
}

// GlobalFlags are the global flags merged over the CLI config file.
type GlobalFlags struct {
	Server     string
	Output     output.Format
	CookieName string
	Timeout    time.Duration
	CAFile     string
	Insecure   bool
}

// ParseGlobalFlags extracts global flags from context. Unset flags fall
// back to the CLI config file.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)

	flags := &GlobalFlags{
		Server:     pick(c.String("server"), cfg.Server, config.DefaultServer),
		CookieName: pick(c.String("cookie-name"), cfg.CookieName),
		Timeout:    c.Duration("timeout"),
		CAFile:     c.String("ca-file"),
		Insecure:   c.Bool("insecure"),
	}

	format, err := output.ParseFormat(pick(c.String("output"), cfg.Output))
	if err != nil {
		return nil, err
	}
	flags.Output = format
	return flags, nil
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

func saveConfig(c *cli.Context, cfg *config.CLIConfig) error {
	path, _ := c.App.Metadata[metaConfigPath].(string)
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("save CLI config: %w", err)
	}
	return nil
}

// newClient builds the HTTP client from the global flags.
func newClient(flags *GlobalFlags) (*connection.HTTPClient, error) {
	opts := []connection.Option{
		connection.WithCookieName(flags.CookieName),
		connection.WithTimeout(flags.Timeout),
	}
	if flags.CAFile != "" || flags.Insecure {
		tlsCfg, err := tlsroots.ClientConfig(flags.CAFile, flags.Insecure)
		if err != nil {
			return nil, err
		}
		opts = append(opts, connection.WithTLSConfig(tlsCfg))
	}
	return connection.NewHTTPClient(flags.Server, opts...), nil
}

// render writes data to the app writer in the selected format.
func render(c *cli.Context, format output.Format, data any) error {
	return output.NewFormatter(format).Format(c.App.Writer, data)
}
