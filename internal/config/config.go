// SPDX-License-Identifier: GPL-3.0-or-later

// Package config holds the gateway's runtime knobs and its topology loader.
//
// [Config] is a plain struct with every field defaulted by [NewConfig];
// callers override only what they need before passing it to the
// orchestrator.
package config

import (
	"time"

	"github.com/ivykit/someip-gateway/internal/bridge"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/ivykit/someip-gateway/internal/telemetry"
)

// Config holds the gateway's tunable timing parameters and ambient
// dependencies.
//
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// DiscoveryPollInterval is how often an EgressBridge re-polls the local
	// transport's service finder while waiting for its consumer to appear.
	//
	// Set by [NewConfig] to 100ms.
	DiscoveryPollInterval time.Duration

	// FindServiceThrottle bounds how often the tunnel re-sends a FindService
	// frame for a service that has not yet acknowledged availability.
	//
	// Set by [NewConfig] to [someiptunnel.FindServiceThrottle].
	FindServiceThrottle time.Duration

	// HandshakeBackoff is the retry interval for the tunnel's startup
	// liveness handshake.
	//
	// Set by [NewConfig] to [someiptunnel.HandshakeBackoff].
	HandshakeBackoff time.Duration

	// ReceiveBackoff is the poll interval an egress SubscriberProxy uses
	// between local-transport receive attempts.
	//
	// Set by [NewConfig] to [bridge.ReceiveBackoff].
	ReceiveBackoff time.Duration

	// Logger receives structured log lines for every bridge and the tunnel
	// adapter.
	//
	// Set by [NewConfig] to [telemetry.DefaultSLogger] (silent).
	Logger telemetry.SLogger

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [telemetry.DefaultErrClassifier].
	ErrClassifier telemetry.ErrClassifier

	// TimeNow returns the current time. Overridable for deterministic
	// tests of anything timestamp-sensitive.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		DiscoveryPollInterval: 100 * time.Millisecond,
		FindServiceThrottle:   someiptunnel.FindServiceThrottle,
		HandshakeBackoff:      someiptunnel.HandshakeBackoff,
		ReceiveBackoff:        bridge.ReceiveBackoff,
		Logger:                telemetry.DefaultSLogger(),
		ErrClassifier:         telemetry.DefaultErrClassifier,
		TimeNow:               time.Now,
	}
}
