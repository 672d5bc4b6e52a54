// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/semsafe/xmetrics"
	"github.com/xmidt-org/semsafe/xviper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ViperIn is the set of dependencies for building the application's Viper.
type ViperIn struct {
	fx.In
	FlagSet *pflag.FlagSet `optional:"true"`
}

// ProvideViper provides the *viper.Viper that Provide reads from.  The configuration file is
// searched for the way xviper.StdOptions does for applicationName, and is optional.  A
// *pflag.FlagSet in the application is bound, so its flags override the file.
func ProvideViper(applicationName string) fx.Option {
	return fx.Provide(
		func(in ViperIn) (*viper.Viper, error) {
			return xviper.New(
				xviper.StdOptions(applicationName, in.FlagSet),
				xviper.ReadInConfig,
			)
		},
	)
}

// ConfigIn is the set of dependencies for reading a Config.
type ConfigIn struct {
	fx.In
	Viper *viper.Viper
}

// OptionsIn is the set of dependencies for building owner options.  Measures are used when
// ProvideMetrics is part of the application.
type OptionsIn struct {
	fx.In
	Config   Config
	Logger   *zap.Logger `optional:"true"`
	Measures *Measures   `optional:"true"`
}

// MetricsIn is the set of dependencies for the metrics registry.
type MetricsIn struct {
	fx.In
	Config Config
	Logger *zap.Logger `optional:"true"`
}

// Provide reads a Config from the given viper key and provides it along with the []Option
// derived from it.
func Provide(key string) fx.Option {
	return fx.Provide(
		func(in ConfigIn) (Config, error) {
			return NewConfig(in.Viper, key)
		},
		func(in OptionsIn) ([]Option, error) {
			opts, err := in.Config.Options(in.Logger)
			if err != nil {
				return nil, err
			}

			if in.Measures != nil {
				opts = append(opts, WithMeasures(in.Measures))
			}

			return opts, nil
		},
	)
}

// ProvideMetrics provides an xmetrics.Registry with this package's metrics preregistered, and
// the *Measures realized from it.
func ProvideMetrics() fx.Option {
	return fx.Provide(
		func(in MetricsIn) (xmetrics.Registry, error) {
			return xmetrics.NewRegistry(in.Config.MetricsOptions(in.Logger))
		},
		func(r xmetrics.Registry) *Measures {
			return NewMeasures(r)
		},
	)
}
