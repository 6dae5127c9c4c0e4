// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seedhost/seedhost/lib/credential"
)

// Default ports.
const (
	DefaultNodePort  = 8776
	DefaultHTTPDPort = 8080
)

// Config is the operator options file.
type Config struct {
	// Paths configures host directory locations.
	Paths PathsConfig `yaml:"paths"`

	// PrivateKeyFile locates the node's secret key: a plain path, or
	// "name:path" for a credential the supervisor decrypts.
	PrivateKeyFile string `yaml:"private_key_file"`

	// PublicKey is the node's public key, either inline ("ssh-ed25519
	// AAAA...") or a path to a .pub file. Optional.
	PublicKey string `yaml:"public_key"`

	// CheckConfig runs the external checker on the compiled settings before
	// they are installed. Default: true.
	CheckConfig bool `yaml:"check_config"`

	// Checker is the command invoked as "<checker> config". Bare names
	// are resolved through Paths.Bin and then PATH.
	Checker string `yaml:"checker"`

	// SettingsFile is a YAML, JSON or JSONC file of free-form node
	// settings. Settings below override it key by key.
	SettingsFile string `yaml:"settings_file"`

	// Settings is the free-form nested settings object.
	Settings map[string]any `yaml:"settings"`

	// Node configures the peer service.
	Node NodeConfig `yaml:"node"`

	// HTTPD configures the optional HTTP gateway.
	HTTPD HTTPDConfig `yaml:"httpd"`

	// Cache configures memoization of evaluation results.
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig configures the evaluation cache kept under Paths.Cache.
type CacheConfig struct {
	// Enable turns the cache on. Default: true.
	Enable bool `yaml:"enable"`

	// Compression is the record compression: "zstd", "lz4" or "none".
	// Default: zstd.
	Compression string `yaml:"compression"`
}

// PathsConfig configures directory locations on the host.
type PathsConfig struct {
	// Bin is searched for service binaries and the checker before PATH.
	Bin string `yaml:"bin"`

	// Cache holds memoized evaluation results.
	// Default: /var/cache/seedhost
	Cache string `yaml:"cache"`

	// Fragments is a directory of operator sandbox fragment files.
	// Default: /etc/seedhost/sandbox.d
	Fragments string `yaml:"fragments"`
}

// ServiceConfig holds the options shared by both services.
type ServiceConfig struct {
	// Binary is the service executable.
	Binary string `yaml:"binary"`

	// ListenAddress is the IP address the service binds.
	ListenAddress string `yaml:"listen_address"`

	// ListenPort is the TCP port the service binds.
	ListenPort int `yaml:"listen_port"`

	// ExtraArgs are appended to the command line verbatim, one token each.
	ExtraArgs []string `yaml:"extra_args"`

	// Environment overrides or adds service environment variables.
	Environment map[string]string `yaml:"environment"`

	// SandboxFragments names extra fragments applied after the built-in
	// chain.
	SandboxFragments []string `yaml:"sandbox_fragments"`

	// SandboxOverride names a fragment applied at operator priority: its
	// values replace the built-in chain's instead of adding to them.
	SandboxOverride string `yaml:"sandbox_override"`
}

// Listen returns the "addr:port" the service binds, with IPv6 literals
// bracketed.
func (s ServiceConfig) Listen() string {
	return net.JoinHostPort(s.ListenAddress, strconv.Itoa(s.ListenPort))
}

// LocalAddress returns the "addr:port" a client on the same host dials to
// reach the service. Wildcard listen addresses map to loopback of the same
// family.
func (s ServiceConfig) LocalAddress() string {
	host := s.ListenAddress
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		if ip.To4() != nil {
			host = "127.0.0.1"
		} else {
			host = "::1"
		}
	}
	return net.JoinHostPort(host, strconv.Itoa(s.ListenPort))
}

// NodeConfig configures the peer service.
type NodeConfig struct {
	ServiceConfig `yaml:",inline"`

	// OpenFirewall opens the node's listen port in the host firewall.
	OpenFirewall bool `yaml:"open_firewall"`
}

// HTTPDConfig configures the HTTP gateway.
type HTTPDConfig struct {
	ServiceConfig `yaml:",inline"`

	// Enable turns the gateway on.
	Enable bool `yaml:"enable"`

	// NodeAddress is the "addr:port" the gateway reaches the node at.
	// Default: the node's listen port on loopback.
	NodeAddress string `yaml:"node_address"`

	// Nginx configures the reverse proxy virtual host.
	Nginx NginxConfig `yaml:"nginx"`
}

// NginxConfig configures the reverse proxy in front of the gateway. Plain
// HTTP is always redirected to HTTPS.
type NginxConfig struct {
	// ServerName enables the virtual host when set.
	ServerName string `yaml:"server_name"`

	// EnableACME requests a certificate for ServerName. Default: true.
	EnableACME bool `yaml:"enable_acme"`
}

// Default returns the configuration before the options file is applied.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Cache:     "/var/cache/seedhost",
			Fragments: "/etc/seedhost/sandbox.d",
		},
		CheckConfig: true,
		Checker:     "seed",
		Cache: CacheConfig{
			Enable:      true,
			Compression: "zstd",
		},
		Node: NodeConfig{
			ServiceConfig: ServiceConfig{
				Binary:        "seed-node",
				ListenAddress: "0.0.0.0",
				ListenPort:    DefaultNodePort,
			},
		},
		HTTPD: HTTPDConfig{
			ServiceConfig: ServiceConfig{
				Binary:        "seed-httpd",
				ListenAddress: "127.0.0.1",
				ListenPort:    DefaultHTTPDPort,
			},
			Nginx: NginxConfig{
				EnableACME: true,
			},
		},
	}
}

// Load loads the options file named by SEEDHOST_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv("SEEDHOST_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("SEEDHOST_CONFIG environment variable not set; " +
			"set it to the path of your seedhost.yaml options file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads the options file at path over [Default].
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes options YAML over [Default] and expands ${VAR} patterns in
// path fields.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing options: %w", err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.Bin = expandVars(c.Paths.Bin, vars)
	c.Paths.Cache = expandVars(c.Paths.Cache, vars)
	c.Paths.Fragments = expandVars(c.Paths.Fragments, vars)
	c.PrivateKeyFile = expandVars(c.PrivateKeyFile, vars)
	c.SettingsFile = expandVars(c.SettingsFile, vars)
	if !looksLikeInlineKey(c.PublicKey) {
		c.PublicKey = expandVars(c.PublicKey, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Provided vars
// are checked first, then the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// looksLikeInlineKey reports whether a public key option holds the key
// itself rather than a path.
func looksLikeInlineKey(s string) bool {
	return strings.HasPrefix(s, "ssh-") || strings.HasPrefix(s, "ecdsa-") || strings.HasPrefix(s, "sk-")
}

// InlinePublicKey reports whether PublicKey holds the key text itself.
func (c *Config) InlinePublicKey() bool {
	return looksLikeInlineKey(c.PublicKey)
}

// Validate checks the configuration for errors. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []error

	if c.PrivateKeyFile == "" {
		errs = append(errs, errors.New("private_key_file is required"))
	} else if _, err := credential.Resolve(c.PrivateKeyFile); err != nil {
		errs = append(errs, fmt.Errorf("private_key_file: %w", err))
	}

	if c.CheckConfig && c.Checker == "" {
		errs = append(errs, errors.New("checker is required when check_config is enabled"))
	}

	errs = append(errs, c.Node.validate("node")...)
	if c.HTTPD.Enable {
		errs = append(errs, c.HTTPD.validate("httpd")...)
		if c.HTTPD.ListenPort == c.Node.ListenPort && sameHost(c.HTTPD.ListenAddress, c.Node.ListenAddress) {
			errs = append(errs, fmt.Errorf("httpd.listen_port %d collides with node.listen_port", c.HTTPD.ListenPort))
		}
		if c.HTTPD.NodeAddress != "" {
			if _, port, err := net.SplitHostPort(c.HTTPD.NodeAddress); err != nil {
				errs = append(errs, fmt.Errorf("httpd.node_address %q: %w", c.HTTPD.NodeAddress, err))
			} else if _, err := parsePort(port); err != nil {
				errs = append(errs, fmt.Errorf("httpd.node_address %q: %w", c.HTTPD.NodeAddress, err))
			}
		}
	}

	if c.HTTPD.Nginx.ServerName != "" {
		if !c.HTTPD.Enable {
			errs = append(errs, errors.New("httpd.nginx.server_name requires httpd.enable"))
		}
		if strings.ContainsAny(c.HTTPD.Nginx.ServerName, " \t;{}/:") {
			errs = append(errs, fmt.Errorf("httpd.nginx.server_name %q is not a hostname", c.HTTPD.Nginx.ServerName))
		}
	}

	switch c.Cache.Compression {
	case "zstd", "lz4", "none":
	default:
		errs = append(errs, fmt.Errorf("cache.compression %q: want zstd, lz4 or none", c.Cache.Compression))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s ServiceConfig) validate(prefix string) []error {
	var errs []error
	if s.Binary == "" {
		errs = append(errs, fmt.Errorf("%s.binary is required", prefix))
	}
	if net.ParseIP(s.ListenAddress) == nil {
		errs = append(errs, fmt.Errorf("%s.listen_address %q is not an IP address", prefix, s.ListenAddress))
	}
	if s.ListenPort < 1 || s.ListenPort > 65535 {
		errs = append(errs, fmt.Errorf("%s.listen_port %d out of range 1-65535", prefix, s.ListenPort))
	}
	for name := range s.Environment {
		if name == "" || strings.ContainsAny(name, "= \t\n") {
			errs = append(errs, fmt.Errorf("%s.environment: invalid variable name %q", prefix, name))
		}
	}
	for i, arg := range s.ExtraArgs {
		if strings.ContainsAny(arg, "\n\x00") {
			errs = append(errs, fmt.Errorf("%s.extra_args[%d] contains a newline or NUL", prefix, i))
		}
	}
	return errs
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

// sameHost reports whether two listen addresses can collide on a port.
func sameHost(a, b string) bool {
	ipA, ipB := net.ParseIP(a), net.ParseIP(b)
	if ipA == nil || ipB == nil {
		return a == b
	}
	return ipA.Equal(ipB) || ipA.IsUnspecified() || ipB.IsUnspecified()
}

// BinaryPath returns the full path to a binary. It looks in Paths.Bin
// first, then falls back to exec.LookPath. Absolute names are returned
// unchanged.
func (c *Config) BinaryPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	if c.Paths.Bin != "" {
		binPath := filepath.Join(c.Paths.Bin, name)
		if _, err := os.Stat(binPath); err == nil {
			return binPath, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		if c.Paths.Bin != "" {
			return "", fmt.Errorf("%s not found in %s or PATH", name, c.Paths.Bin)
		}
		return "", fmt.Errorf("%s not found in PATH", name)
	}
	return path, nil
}
