package config

import (
	"fmt"
	"net"

	"github.com/yndnr/sitegate/internal/infra/confloader"
)

// PortEnv overrides the port of server.http.addr when set.
const PortEnv = "PORT"

// Load builds the configuration from defaults, the YAML file at path (if
// any), SITEGATE_ environment variables and PORT.
func Load(path string, opts ...confloader.Option) (*ServerConfig, error) {
	cfg := Default()

	base := []confloader.Option{
		confloader.WithConfigFile(path),
		confloader.WithEnvOverride(confloader.EnvOverride{
			Env:   PortEnv,
			Key:   "server.http.addr",
			Value: withPort,
		}),
	}
	loader := confloader.NewLoader(append(base, opts...)...)
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withPort keeps the host of addr and replaces its port.
func withPort(addr, port string) string {
	if addr == "" {
		addr = DefaultHTTPAddr
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, port)
}
