package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sitegate/internal/cli/connection"
)

// HealthResult is printed by `health` and `ready`.
type HealthResult struct {
	Status    string `json:"status" yaml:"status"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	Time      string `json:"time" yaml:"time"`
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the server is up",
		Action: probe("/health"),
	}
}

// ReadyCommand returns the ready command.
func ReadyCommand() *cli.Command {
	return &cli.Command{
		Name:   "ready",
		Usage:  "Check that the server can reach its credential store",
		Action: probe("/ready"),
	}
}

func probe(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		flags, err := ParseGlobalFlags(c)
		if err != nil {
			return err
		}

		client, err := newClient(flags)
		if err != nil {
			return err
		}

		resp, err := client.Get(c.Context, path, "")
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		result := &HealthResult{}
		if err := connection.ParseResponse(resp, result); err != nil {
			return err
		}
		return render(c, flags.Output, result)
	}
}
