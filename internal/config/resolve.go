package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// URL resolves the signaling endpoint for the configured deployment.
func (s ServerConfig) URL() (string, error) {
	switch s.Deployment {
	case DeploymentHosted:
		if s.Host == "" {
			return "", fmt.Errorf("resolve endpoint: server.host is empty")
		}
		u := url.URL{Scheme: s.Scheme, Host: s.Host, Path: s.Path}
		return u.String(), nil

	case DeploymentLocal:
		u := url.URL{
			Scheme: "ws",
			Host:   net.JoinHostPort(s.LocalHost, strconv.Itoa(s.LocalPort)),
			Path:   s.Path,
		}
		return u.String(), nil

	default:
		return "", fmt.Errorf("resolve endpoint: unknown deployment %q", s.Deployment)
	}
}
