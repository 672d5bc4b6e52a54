// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"github.com/xmidt-org/semsafe/logging"
	"github.com/xmidt-org/semsafe/semname"
	"github.com/xmidt-org/semsafe/xmetrics"
	"github.com/xmidt-org/semsafe/xviper"
	"go.uber.org/zap"
)

// DefaultConfigKey is the viper key under which Config is conventionally stored.
const DefaultConfigKey = "semaphore"

// AnonymousConfig configures anonymous construction.
type AnonymousConfig struct {
	// Attempts is the number of generated names to try.  DefaultAttempts is used if unset.
	Attempts int `mapstructure:"attempts"`

	// Prefix is placed in front of every generated name.
	Prefix string `mapstructure:"prefix"`

	// Perm is the permission of created semaphores, e.g. "0600".  DefaultPerm is used if unset.
	Perm os.FileMode `mapstructure:"perm"`
}

// MetricsConfig names the metrics registered for this package.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// Config is the externally configurable part of semaphore owners.
type Config struct {
	// SpinLimit bounds how long callers wait for another caller's initialization.  See WithSpinLimit.
	SpinLimit int `mapstructure:"spinLimit"`

	Anonymous AnonymousConfig `mapstructure:"anonymous"`
	Log       logging.Options `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Defaults returns the defaults NewConfig registers for a Config stored under key.
func Defaults(key string) xviper.Defaults {
	return xviper.Defaults{
		key + ".anonymous.attempts": DefaultAttempts,
		key + ".anonymous.perm":     DefaultPerm,
	}
}

// NewConfig registers Defaults(key) with v and reads a Config from the given key.  A nil Viper
// yields the zero Config, which Options treats the same as the defaults.
func NewConfig(v *viper.Viper, key string) (Config, error) {
	var c Config
	if v == nil {
		return c, nil
	}

	xviper.ApplyDefaults(v, Defaults(key))
	if err := xviper.UnmarshalKey(v, key, &c); err != nil {
		return Config{}, fmt.Errorf("unable to read semaphore configuration from %q: %w", key, err)
	}

	return c, nil
}

// Options converts this configuration into owner options.  If l is nil, a logger is built from Log.
func (c Config) Options(l *zap.Logger) ([]Option, error) {
	if c.SpinLimit < 0 {
		return nil, fmt.Errorf("invalid spin limit %d", c.SpinLimit)
	}

	if c.Anonymous.Attempts < 0 {
		return nil, fmt.Errorf("invalid anonymous attempts %d", c.Anonymous.Attempts)
	}

	if c.Anonymous.Perm&^os.ModePerm != 0 {
		return nil, fmt.Errorf("invalid anonymous permission %o", uint32(c.Anonymous.Perm))
	}

	if err := semname.ValidatePrefix(c.Anonymous.Prefix); err != nil {
		return nil, err
	}

	if n := len(semname.Separator) + len(c.Anonymous.Prefix) + semname.KSUIDLength; n > maxNameLength {
		return nil, fmt.Errorf(
			"%w: prefix %q makes generated names %d bytes, more than the %d allowed",
			ErrInvalidName, c.Anonymous.Prefix, n, maxNameLength,
		)
	}

	if l == nil {
		l = logging.New(&c.Log)
	}

	return []Option{
		WithLogger(l),
		WithSpinLimit(c.SpinLimit),
		WithAttempts(c.Anonymous.Attempts),
		WithPerm(c.Anonymous.Perm),
		WithGenerator(semname.Generator{Prefix: c.Anonymous.Prefix}),
	}, nil
}

// MetricsOptions returns registry options that preregister this package's metrics.
func (c Config) MetricsOptions(l *zap.Logger) *xmetrics.Options {
	return &xmetrics.Options{
		Logger:    l,
		Namespace: c.Metrics.Namespace,
		Subsystem: c.Metrics.Subsystem,
		Metrics:   Metrics(),
	}
}
