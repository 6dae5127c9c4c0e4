// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/ssh"

	"github.com/seedhost/seedhost/lib/binhash"
	"github.com/seedhost/seedhost/lib/codec"
	"github.com/seedhost/seedhost/lib/compile"
	"github.com/seedhost/seedhost/lib/config"
	"github.com/seedhost/seedhost/lib/credential"
	"github.com/seedhost/seedhost/lib/exposure"
	"github.com/seedhost/seedhost/lib/service"
	"github.com/seedhost/seedhost/lib/settings"
	"github.com/seedhost/seedhost/sandbox"
)

// Fixed host paths of rendered files, relative to the install root.
const (
	ArtifactFile  = "etc/seedhost/config.json"
	UnitDirectory = "etc/systemd/system"
	NginxFile     = "etc/nginx/conf.d/seedhost.conf"
	NftablesFile  = "etc/nftables.d/seedhost.nft"
	PublicKeyFile = "etc/seedhost/keys/node.pub"
)

// PublicKeyTarget is where the node sees its public key.
const PublicKeyTarget = "/var/lib/seedhost/keys/node.pub"

// keyFragmentName names the fragment that mounts the node's key material.
const keyFragmentName = "node-key"

// Options control one evaluation.
type Options struct {
	// Checker replaces the checker built from the options. Nil runs
	// "<checker> config" when check_config is enabled.
	Checker compile.Checker

	// CheckerIdentity names Checker in cache keys. A custom Checker with
	// no identity is never cached.
	CheckerIdentity string

	// EnvPrefix enables the environment settings layer. Empty skips it.
	EnvPrefix string

	// NoCache bypasses the evaluation cache.
	NoCache bool

	// Logger is optional.
	Logger *slog.Logger
}

// Result is a validated evaluation: everything needed to install the
// services. A Result only exists when the checker accepted the artifact.
type Result struct {
	Config     *config.Config
	Settings   settings.Settings
	Credential credential.Descriptor
	Exposure   exposure.Exposure

	// Artifact is the canonical settings JSON.
	Artifact []byte

	// Checked is true when a checker accepted Artifact, now or in a
	// cached evaluation.
	Checked bool

	// Cached is true when the verdict came from the cache.
	Cached bool

	// Key is the cache key of the evaluation.
	Key codec.Fingerprint

	Node  *service.Descriptor
	HTTPD *service.Descriptor

	// PublicKey is the authorized_keys form of an inline public key, or
	// nil.
	PublicKey []byte
}

// Variables returns the values substituted into sandbox fragments.
func Variables(cfg *config.Config) sandbox.Variables {
	return sandbox.Variables{
		sandbox.VarStateDir:     service.StateDirectory,
		sandbox.VarNodePort:     strconv.Itoa(cfg.Node.ListenPort),
		sandbox.VarHTTPDPort:    strconv.Itoa(cfg.HTTPD.ListenPort),
		sandbox.VarConfigSource: compile.ArtifactPath,
		sandbox.VarConfigTarget: compile.ContainerPath,
	}
}

// Evaluate turns options into validated service descriptors and a checked
// settings artifact. Nothing is written outside the cache directory.
func Evaluate(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options:\n%w", err)
	}

	user, err := LoadSettings(cfg, opts.EnvPrefix)
	if err != nil {
		return nil, err
	}
	exposed := exposure.Apply(cfg)
	defaults := append(settings.BuiltinDefaults(cfg), exposed.Defaults()...)
	resolved, err := settings.Resolve(user, defaults)
	if err != nil {
		return nil, fmt.Errorf("resolving settings: %w", err)
	}

	key, err := credential.Resolve(cfg.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("private_key_file: %w", err)
	}
	publicKey, err := inlinePublicKey(cfg)
	if err != nil {
		return nil, err
	}

	policies, err := BuildPolicies(cfg, key, logger)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Config:     cfg,
		Settings:   resolved,
		Credential: key,
		Exposure:   exposed,
		PublicKey:  publicKey,
	}

	nodeBinary, err := cfg.BinaryPath(cfg.Node.Binary)
	if err != nil {
		return nil, fmt.Errorf("node binary: %w", err)
	}
	result.Node, err = service.Assemble(service.KindNode, cfg, service.Inputs{
		Binary:     nodeBinary,
		Policy:     policies.Node,
		Credential: key,
	})
	if err != nil {
		return nil, err
	}
	if cfg.HTTPD.Enable {
		httpdBinary, err := cfg.BinaryPath(cfg.HTTPD.Binary)
		if err != nil {
			return nil, fmt.Errorf("httpd binary: %w", err)
		}
		result.HTTPD, err = service.Assemble(service.KindHTTPD, cfg, service.Inputs{
			Binary: httpdBinary,
			Policy: policies.HTTPD,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := validate(ctx, cfg, opts, logger, policies, result); err != nil {
		return nil, err
	}
	return result, nil
}

// validate serializes and checks the settings, consulting the cache.
func validate(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger, policies *Policies, result *Result) error {
	artifact, err := compile.Serialize(result.Settings)
	if err != nil {
		return err
	}
	result.Artifact = artifact

	checker, identity, err := resolveChecker(cfg, opts, logger)
	if err != nil {
		return err
	}
	compiler := &compile.Compiler{Checker: checker, Logger: logger}

	result.Key, err = cacheKey(cacheInput{
		Options:   cfg,
		Fragments: policies.Fragments,
		Artifact:  artifact,
		Checker:   identity,
	})
	if err != nil {
		return err
	}

	var cache *Cache
	if !opts.NoCache && (checker == nil || identity != "") {
		cache, err = NewCache(cfg, logger)
		if err != nil {
			return err
		}
	}
	if cache != nil {
		record, err := cache.Load(result.Key)
		if err != nil {
			logger.Warn("ignoring unreadable cache record", "error", err)
		} else if record != nil && string(record.Artifact) == string(artifact) && record.Checker == identity {
			logger.Info("evaluation cache hit", "key", result.Key.String())
			result.Checked = record.Checked
			result.Cached = true
			return nil
		}
	}

	result.Checked, err = compiler.Verify(ctx, artifact)
	if err != nil {
		return err
	}

	if cache != nil {
		record := &Record{Artifact: artifact, Checked: result.Checked, Checker: identity}
		if err := cache.Store(result.Key, record); err != nil {
			logger.Warn("could not cache evaluation", "error", err)
		}
	}
	return nil
}

// resolveChecker returns the checker for an evaluation and its cache
// identity. The identity of the exec checker includes the binary's
// content hash, so upgrading seed invalidates cached verdicts.
func resolveChecker(cfg *config.Config, opts Options, logger *slog.Logger) (compile.Checker, string, error) {
	if opts.Checker != nil {
		return opts.Checker, opts.CheckerIdentity, nil
	}
	if !cfg.CheckConfig {
		return nil, "disabled", nil
	}
	path, err := cfg.BinaryPath(cfg.Checker)
	if err != nil {
		return nil, "", fmt.Errorf("config checker: %w", err)
	}
	digest, err := binhash.HashFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("config checker: %w", err)
	}
	checker := &compile.ExecChecker{Command: path, Logger: logger}
	return checker, "exec:" + path + "@" + digest.String(), nil
}

// LoadSettings layers the operator's settings: the settings file, then the
// inline settings object, then the environment when envPrefix is set.
func LoadSettings(cfg *config.Config, envPrefix string) (settings.Settings, error) {
	var layers []settings.Settings
	if cfg.SettingsFile != "" {
		fromFile, err := settings.LoadFile(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fromFile)
	}
	if len(cfg.Settings) > 0 {
		layers = append(layers, settings.FromNested(cfg.Settings))
	}
	if envPrefix != "" {
		fromEnv, err := settings.LoadEnv(envPrefix)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fromEnv)
	}
	return settings.Merge(layers...), nil
}

// inlinePublicKey parses an inline public key option. Path-valued options
// return nil; the file is bound as-is.
func inlinePublicKey(cfg *config.Config) ([]byte, error) {
	if cfg.PublicKey == "" || !cfg.InlinePublicKey() {
		return nil, nil
	}
	parsed, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(cfg.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("public_key: %w", err)
	}
	line := ssh.MarshalAuthorizedKey(parsed)
	if comment != "" {
		line = append(line[:len(line)-1], []byte(" "+comment+"\n")...)
	}
	return line, nil
}

// Policies are the merged sandbox policies of both services and every
// fragment that went into them.
type Policies struct {
	Node  *sandbox.Policy
	HTTPD *sandbox.Policy

	// Fragments holds each contributing fragment after expansion, by
	// name.
	Fragments map[string]*sandbox.Fragment
}

// BuildPolicies loads the fragment set and builds both policies. The node
// chain is common, node, the key mounts, node-relax, then the operator's
// extra fragments; the gateway chain is common, httpd, httpd-relax, then
// extras. A configured override applies last at operator priority.
func BuildPolicies(cfg *config.Config, key credential.Descriptor, logger *slog.Logger) (*Policies, error) {
	loader, err := sandbox.LoadWithOverrides(logger, cfg.Paths.Fragments)
	if err != nil {
		return nil, fmt.Errorf("loading sandbox fragments: %w", err)
	}
	vars := Variables(cfg)
	policies := &Policies{Fragments: make(map[string]*sandbox.Fragment)}

	policies.Node, err = buildPolicy(loader, vars, policies.Fragments, cfg.Node.ServiceConfig,
		[]string{sandbox.FragmentCommon, sandbox.FragmentNode},
		keyFragment(cfg, key), sandbox.FragmentNodeRelax)
	if err != nil {
		return nil, fmt.Errorf("node sandbox: %w", err)
	}

	if cfg.HTTPD.Enable {
		policies.HTTPD, err = buildPolicy(loader, vars, policies.Fragments, cfg.HTTPD.ServiceConfig,
			[]string{sandbox.FragmentCommon, sandbox.FragmentHTTPD},
			nil, sandbox.FragmentHTTPDRelax)
		if err != nil {
			return nil, fmt.Errorf("httpd sandbox: %w", err)
		}
	}
	return policies, nil
}

func buildPolicy(loader *sandbox.FragmentLoader, vars sandbox.Variables, seen map[string]*sandbox.Fragment,
	options config.ServiceConfig, hardening []string, inserted *sandbox.Fragment, relax string) (*sandbox.Policy, error) {
	chain, err := loader.Chain(hardening, vars)
	if err != nil {
		return nil, err
	}
	if inserted != nil {
		chain = append(chain, inserted)
	}
	relaxations, err := loader.Chain(append([]string{relax}, options.SandboxFragments...), vars)
	if err != nil {
		return nil, err
	}
	chain = append(chain, relaxations...)

	policy, err := sandbox.Build(chain[0], chain[1:]...)
	if err != nil {
		return nil, err
	}
	for _, fragment := range chain {
		seen[fragment.Name] = fragment
	}

	if options.SandboxOverride != "" {
		override, err := loader.Get(options.SandboxOverride, vars)
		if err != nil {
			return nil, err
		}
		policy, err = policy.Override(override)
		if err != nil {
			return nil, err
		}
		seen[override.Name] = override
	}
	return policy, nil
}

// keyFragment binds the loaded credential, and the public key when one is
// configured, into the node's key directory.
func keyFragment(cfg *config.Config, key credential.Descriptor) *sandbox.Fragment {
	fragment := sandbox.NewFragment(keyFragmentName, "Node key material")
	mounts := []string{credential.Mount(key, credential.MountTarget)}
	switch {
	case cfg.PublicKey == "":
	case cfg.InlinePublicKey():
		mounts = append(mounts, "/"+PublicKeyFile+":"+PublicKeyTarget)
	default:
		mounts = append(mounts, cfg.PublicKey+":"+PublicKeyTarget)
	}
	return fragment.AppendDirective("BindReadOnlyPaths", mounts...)
}

// ErrNotChecked is returned by Install when a result's artifact was never
// accepted by a checker and the options require one.
var ErrNotChecked = errors.New("artifact was not validated by the config checker")

// Install writes the rendered files under root. The artifact was accepted
// before this point; a rejected evaluation never produces a Result.
func (r *Result) Install(root string) ([]string, error) {
	if r.Config.CheckConfig && !r.Checked {
		return nil, ErrNotChecked
	}
	compiler := &compile.Compiler{Root: root}
	files := r.Files()
	written := make([]string, 0, len(files))
	for _, file := range files {
		if file.Path == ArtifactFile {
			artifact, err := compiler.Install(file.Data, r.Checked)
			if err != nil {
				return written, err
			}
			written = append(written, artifact.Path)
			continue
		}
		path := file.Under(root)
		if err := compile.WriteFileAtomic(path, file.Data, file.Mode); err != nil {
			return written, fmt.Errorf("installing %s: %w", file.Path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
