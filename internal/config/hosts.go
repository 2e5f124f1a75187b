package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRedisPort is used when an entry does not carry a port.
const DefaultRedisPort = 6379

// Host describes the Redis service configured for one environment.
type Host struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Hosts maps environment names to their raw host entries. Entries are
// interpreted by Lookup, so only the selected environment can fail.
type Hosts map[string]yaml.Node

// UnmarshalYAML accepts either a scalar ("localhost", "cache:6380", "::1") or a mapping.
func (h *Host) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*h = Host{}
			return nil
		}
		parsed, err := parseHostString(node.Value)
		if err != nil {
			return err
		}
		*h = parsed
		return nil
	case yaml.MappingNode:
		type plain Host
		var out plain
		if err := node.Decode(&out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidHost, err)
		}
		*h = Host(out)
		h.Host = unbracket(strings.TrimSpace(h.Host))
		if h.Port != 0 && !validPort(h.Port) {
			return fmt.Errorf("%w: port must be in %d..%d (line %d)", ErrInvalidHost, minPort, maxPort, node.Line)
		}
		if h.DB < 0 {
			return fmt.Errorf("%w: db must be >= 0 (line %d)", ErrInvalidHost, node.Line)
		}
		return nil
	default:
		return fmt.Errorf("%w: expected string or mapping at line %d", ErrInvalidHost, node.Line)
	}
}

// Addr returns the host:port dial address, falling back to the default Redis port.
func (h Host) Addr() string {
	port := h.Port
	if port == 0 {
		port = DefaultRedisPort
	}
	return net.JoinHostPort(h.Host, strconv.Itoa(port))
}

// LoadHosts reads the host table at path. The document must be a mapping;
// individual entries are not interpreted until Lookup.
func LoadHosts(path string) (Hosts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var hosts Hosts
	if err := yaml.Unmarshal(data, &hosts); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}
	if hosts == nil {
		hosts = Hosts{}
	}
	return hosts, nil
}

// Lookup returns the host configured for env.
func (h Hosts) Lookup(env string) (Host, error) {
	node, ok := h[env]
	if !ok {
		return Host{}, fmt.Errorf("%w: %q", ErrEnvironmentNotFound, env)
	}

	var host Host
	if err := node.Decode(&host); err != nil {
		return Host{}, fmt.Errorf("environment %q: %w", env, err)
	}
	if host.Host == "" {
		return Host{}, fmt.Errorf("%w: environment %q", ErrEmptyHost, env)
	}
	return host, nil
}

const (
	minPort = 1
	maxPort = 65535
)

func validPort(port int) bool {
	return port >= minPort && port <= maxPort
}

// unbracket strips the brackets from an IPv6 literal written as "[addr]".
func unbracket(raw string) string {
	if len(raw) > 2 && raw[0] == '[' && raw[len(raw)-1] == ']' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

func parseHostString(raw string) (Host, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Host{}, nil
	}

	if ip := net.ParseIP(unbracket(raw)); ip != nil {
		return Host{Host: unbracket(raw)}, nil
	}

	host, portStr, err := net.SplitHostPort(raw)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && addrErr.Err == "missing port in address" {
			return Host{Host: unbracket(raw)}, nil
		}
		return Host{}, fmt.Errorf("%w %q: %v", ErrInvalidHost, raw, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || !validPort(port) {
		return Host{}, fmt.Errorf("%w %q: port must be in %d..%d", ErrInvalidHost, raw, minPort, maxPort)
	}
	return Host{Host: host, Port: port}, nil
}
