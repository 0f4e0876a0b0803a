package core

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	TargetScheme = "hive2"

	DefaultHost     = "localhost"
	DefaultPort     = 10000
	DefaultDatabase = "default"
	DefaultHTTPPath = "cliservice"
)

// Endpoint addresses the remote service.
type Endpoint struct {
	Host            string
	Port            int
	RemotePrincipal string
	Database        string
	HTTPPath        string
	// SSL selects https for the HTTP transport.
	SSL bool
}

// NewEndpoint returns an endpoint with defaults applied to empty fields.
func NewEndpoint(host string, port int, remotePrincipal string) Endpoint {
	ep := Endpoint{
		Host:            host,
		Port:            port,
		RemotePrincipal: remotePrincipal,
	}
	return ep.withDefaults()
}

func (e Endpoint) withDefaults() Endpoint {
	if e.Host == "" {
		e.Host = DefaultHost
	}
	if e.Port == 0 {
		e.Port = DefaultPort
	}
	if e.Database == "" {
		e.Database = DefaultDatabase
	}
	if e.HTTPPath == "" {
		e.HTTPPath = DefaultHTTPPath
	}
	return e
}

// Target renders the connection target in the form of:
//
//	hive2://<host>:<port>/<database>;principal=<remote principal>
//
// httpPath is appended only when it differs from the default, ssl only when set.
func (e Endpoint) Target() string {
	e = e.withDefaults()

	var sb strings.Builder
	sb.WriteString(TargetScheme)
	sb.WriteString("://")
	sb.WriteString(net.JoinHostPort(e.Host, strconv.Itoa(e.Port)))
	sb.WriteString("/")
	sb.WriteString(e.Database)
	sb.WriteString(";principal=")
	sb.WriteString(e.RemotePrincipal)
	if e.HTTPPath != DefaultHTTPPath {
		sb.WriteString(";httpPath=")
		sb.WriteString(e.HTTPPath)
	}
	if e.SSL {
		sb.WriteString(";ssl=true")
	}
	return sb.String()
}

// URL is the address of the thrift HTTP endpoint.
func (e Endpoint) URL() string {
	e = e.withDefaults()
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:   "/" + strings.TrimPrefix(e.HTTPPath, "/"),
	}
	if e.SSL {
		u.Scheme = "https"
	}
	return u.String()
}

// ParseTarget is the inverse of Endpoint.Target.
func ParseTarget(target string) (Endpoint, error) {
	rest, ok := strings.CutPrefix(target, TargetScheme+"://")
	if !ok {
		return Endpoint{}, fmt.Errorf("invalid target %q: expected %s:// scheme", target, TargetScheme)
	}

	hostPort, params, _ := strings.Cut(rest, "/")
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid target %q: %w", target, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("invalid target %q: bad port %q", target, portStr)
	}

	ep := Endpoint{
		Host: host,
		Port: port,
	}

	parts := strings.Split(params, ";")
	ep.Database = parts[0]
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return Endpoint{}, fmt.Errorf("invalid target %q: malformed parameter %q", target, part)
		}
		switch key {
		case "principal":
			ep.RemotePrincipal = value
		case "httpPath":
			ep.HTTPPath = value
		case "ssl":
			ssl, err := strconv.ParseBool(value)
			if err != nil {
				return Endpoint{}, fmt.Errorf("invalid target %q: bad ssl value %q", target, value)
			}
			ep.SSL = ssl
		}
	}

	if ep.RemotePrincipal == "" {
		return Endpoint{}, errors.New("invalid target: principal parameter is required")
	}

	return ep.withDefaults(), nil
}
