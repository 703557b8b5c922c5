// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads chatproxy configuration.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML file
// named by CHATPROXY_CONFIG, then individual environment variables. The
// env layer exists because the service runs in podman-compose where
// per-container env is the natural override mechanism.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConfigPath      = "CHATPROXY_CONFIG"
	EnvPort            = "CHATPROXY_PORT"
	EnvCompletionURL   = "COMPLETION_SERVICE_URL"
	EnvUpstreamTimeout = "CHATPROXY_UPSTREAM_TIMEOUT"
	EnvSessionTTL      = "CHATPROXY_SESSION_TTL"
	EnvCookieName      = "CHATPROXY_COOKIE_NAME"
)

// Config holds the chatproxy runtime settings.
//
// YAML keys: port, completion_base_url, upstream_timeout, session_ttl,
// cookie_name. Durations use Go syntax ("60s", "168h").
type Config struct {
	// Port the HTTP server listens on.
	Port string
	// CompletionBaseURL is the upstream completion service root
	// (serves /chat/completions and /model).
	CompletionBaseURL string
	// UpstreamTimeout bounds each completion call.
	UpstreamTimeout time.Duration
	// SessionTTL is the sliding idle lifetime of a session.
	SessionTTL time.Duration
	// CookieName is the session cookie name.
	CookieName string
}

// UnmarshalYAML overlays only the keys present in the document, so file
// values layer over the defaults, and parses durations from Go duration
// strings (yaml.v3 has no native time.Duration support).
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Port              string  `yaml:"port"`
		CompletionBaseURL *string `yaml:"completion_base_url"`
		UpstreamTimeout   string  `yaml:"upstream_timeout"`
		SessionTTL        string  `yaml:"session_ttl"`
		CookieName        string  `yaml:"cookie_name"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Port != "" {
		c.Port = raw.Port
	}
	// Pointer so an explicit empty string overrides the default and gets
	// caught by the validation in Load.
	if raw.CompletionBaseURL != nil {
		c.CompletionBaseURL = *raw.CompletionBaseURL
	}
	if raw.CookieName != "" {
		c.CookieName = raw.CookieName
	}
	if raw.UpstreamTimeout != "" {
		d, err := time.ParseDuration(raw.UpstreamTimeout)
		if err != nil {
			return fmt.Errorf("invalid upstream_timeout %q: %w", raw.UpstreamTimeout, err)
		}
		c.UpstreamTimeout = d
	}
	if raw.SessionTTL != "" {
		d, err := time.ParseDuration(raw.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl %q: %w", raw.SessionTTL, err)
		}
		c.SessionTTL = d
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:              "12230",
		CompletionBaseURL: "https://ai.hackclub.com",
		UpstreamTimeout:   60 * time.Second,
		SessionTTL:        7 * 24 * time.Hour,
		CookieName:        "chat_session",
	}
}

// Load resolves the effective configuration: defaults, then the optional
// YAML file, then env overrides. A missing config file is not an error; an
// unreadable or unparsable one is.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
		}
		slog.Info("Loaded config file", "path", path)
	}

	applyEnv(&cfg)

	if cfg.CompletionBaseURL == "" {
		return Config{}, fmt.Errorf("completion service base URL must not be empty")
	}
	return cfg, nil
}

// applyEnv overlays individual env vars onto cfg. Malformed durations are
// logged and skipped rather than fatal: a typo in one override should not
// take the whole service down.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvPort); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv(EnvCompletionURL); v != "" {
		cfg.CompletionBaseURL = v
	}
	if v := os.Getenv(EnvCookieName); v != "" {
		cfg.CookieName = v
	}
	if v := os.Getenv(EnvUpstreamTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.UpstreamTimeout = d
		} else {
			slog.Warn("Ignoring invalid upstream timeout override", "value", v)
		}
	}
	if v := os.Getenv(EnvSessionTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		} else {
			slog.Warn("Ignoring invalid session TTL override", "value", v)
		}
	}
}
