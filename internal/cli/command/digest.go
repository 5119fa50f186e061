package command

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sitegate/internal/storage/credential"
)

// DigestResult is printed by `digest`.
type DigestResult struct {
	Encoding string `json:"encoding" yaml:"encoding"`
	Value    string `json:"value" yaml:"value"`
}

// DigestCommand returns the digest command, which prints the value to store
// in the credential table for a secret.
func DigestCommand() *cli.Command {
	return &cli.Command{
		Name:  "digest",
		Usage: "Encode a secret the way the server does before querying",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "secret",
				Usage: "Secret to encode; - reads one line from stdin",
				Value: "-",
			},
			&cli.StringFlag{
				Name:    "pepper",
				Usage:   "Server pepper (credentials.pepper)",
				EnvVars: []string{"SITEGATE_CREDENTIALS__PEPPER"},
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "Secret encoding: plain or argon2id",
				Value: credential.EncodingArgon2id,
			},
		},
		Action: digest,
	}
}

func digest(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	encoder, err := credential.NewEncoder(c.String("encoding"), c.String("pepper"))
	if err != nil {
		return err
	}

	secret := c.String("secret")
	if secret == "-" {
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read secret from stdin: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		return errors.New("secret is empty")
	}

	return render(c, flags.Output, &DigestResult{
		Encoding: c.String("encoding"),
		Value:    encoder.Encode(secret),
	})
}
