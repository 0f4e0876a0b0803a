// Package config holds the command line settings of the example run.
package config

import (
	"strconv"
	"time"

	"github.com/hivekrb/hivekrb/auth/kerberos"
	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/output/format"
)

const (
	DefaultDriver         = "hive"
	DefaultConnectTimeout = "30s"
	DefaultQueryTimeout   = "10m"
)

// Config is filled from flags. Values are kept as given so they can be
// expanded before use.
type Config struct {
	Server         string
	Port           string
	HivePrincipal  string
	Principal      string
	Keytab         string
	KrbConf        string
	HTTPPath       string
	Driver         string
	Format         string
	ConnectTimeout string
	QueryTimeout   string
	SSL            bool
	DisableFAST    bool
	Verbose        bool
}

// Defaults returns a config with every optional value set.
func Defaults() *Config {
	return &Config{
		Server:         core.DefaultHost,
		Port:           strconv.Itoa(core.DefaultPort),
		HTTPPath:       core.DefaultHTTPPath,
		Driver:         DefaultDriver,
		Format:         format.Default,
		ConnectTimeout: DefaultConnectTimeout,
		QueryTimeout:   DefaultQueryTimeout,
	}
}

// Expand renders templates in every string value.
func (c *Config) Expand() {
	for _, v := range []*string{
		&c.Server,
		&c.Port,
		&c.HivePrincipal,
		&c.Principal,
		&c.Keytab,
		&c.KrbConf,
		&c.HTTPPath,
		&c.Driver,
		&c.Format,
		&c.ConnectTimeout,
		&c.QueryTimeout,
	} {
		*v = core.ExpandOrDefault(*v)
	}
}

// Validate checks the required values in a fixed order, then the optional ones.
func (c *Config) Validate() error {
	switch {
	case c.HivePrincipal == "":
		return &core.ArgumentError{Field: "hive-principal", Message: "Missing hive principal"}
	case c.Keytab == "":
		return &core.ArgumentError{Field: "keytab", Message: "Missing app's keytab"}
	case c.Principal == "":
		return &core.ArgumentError{Field: "principal", Message: "Missing app's principal"}
	}

	if _, err := c.port(); err != nil {
		return &core.ArgumentError{Field: "port", Message: "Invalid port " + strconv.Quote(c.Port)}
	}
	if c.Driver == "" {
		return &core.ArgumentError{Field: "driver", Message: "Missing driver"}
	}
	if _, err := format.New(c.Format); err != nil {
		return &core.ArgumentError{Field: "format", Message: err.Error()}
	}
	if _, err := parseTimeout(c.ConnectTimeout); err != nil {
		return &core.ArgumentError{Field: "connect-timeout", Message: err.Error()}
	}
	if _, err := parseTimeout(c.QueryTimeout); err != nil {
		return &core.ArgumentError{Field: "query-timeout", Message: err.Error()}
	}

	return nil
}

func (c *Config) port() (int, error) {
	if c.Port == "" {
		return core.DefaultPort, nil
	}
	p, err := strconv.Atoi(c.Port)
	if err != nil {
		return 0, err
	}
	if p < 1 || p > 65535 {
		return 0, strconv.ErrRange
	}
	return p, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Endpoint returns the remote service address. Call after Validate.
func (c *Config) Endpoint() core.Endpoint {
	port, _ := c.port()
	ep := core.NewEndpoint(c.Server, port, c.HivePrincipal)
	if c.HTTPPath != "" {
		ep.HTTPPath = c.HTTPPath
	}
	ep.SSL = c.SSL
	return ep
}

// Kerberos returns the login parameters of the client identity.
func (c *Config) Kerberos() kerberos.Config {
	return kerberos.Config{
		Principal:     c.Principal,
		KeytabPath:    c.Keytab,
		KrbConfigPath: c.KrbConf,
		DisableFAST:   c.DisableFAST,
	}
}

// ConnectTimeoutDuration bounds session open. Zero means the default.
func (c *Config) ConnectTimeoutDuration() time.Duration {
	d, _ := parseTimeout(c.ConnectTimeout)
	if d == 0 {
		return core.DefaultConnectTimeout
	}
	return d
}

// QueryTimeoutDuration bounds each statement. Zero means the default.
func (c *Config) QueryTimeoutDuration() time.Duration {
	d, _ := parseTimeout(c.QueryTimeout)
	if d == 0 {
		return core.DefaultStatementTimeout
	}
	return d
}
