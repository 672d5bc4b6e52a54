// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultNameFlag is the flag that, when set, replaces the configuration file name.
	DefaultNameFlag = "name"

	// DefaultFileFlag is the flag that, when set, names the configuration file to read.
	DefaultFileFlag = "file"
)

// Option configures a Viper instance.
type Option func(*viper.Viper) error

// New creates a Viper instance and applies each option in order, stopping at the first error.
func New(o ...Option) (*viper.Viper, error) {
	v := viper.New()
	for _, f := range o {
		if err := f(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// AutomaticEnv binds every key to an environment variable.  Nested keys use '_' in place of '.'.
func AutomaticEnv(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

// ReadInConfig reads the configuration file, if one can be found.  A missing file is not an error.
func ReadInConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
		return nil
	}

	return err
}

// BindFlags binds every flag in fs to the key of the same name.  DefaultNameFlag and DefaultFileFlag,
// when set, select the configuration file.  A nil fs binds nothing.
func BindFlags(fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		if fs == nil {
			return nil
		}

		if f := fs.Lookup(DefaultNameFlag); f != nil && len(f.Value.String()) > 0 {
			v.SetConfigName(f.Value.String())
		}

		if f := fs.Lookup(DefaultFileFlag); f != nil && len(f.Value.String()) > 0 {
			v.SetConfigFile(f.Value.String())
		}

		return v.BindPFlags(fs)
	}
}

// StdOptions looks for a configuration file named after the application in /etc/<app>, $HOME/.<app>
// and the working directory, lets <APP>_ environment variables override keys, and binds fs.
func StdOptions(applicationName string, fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		for _, dir := range []string{filepath.Join("/etc", applicationName), "$HOME/." + applicationName, "."} {
			v.AddConfigPath(dir)
		}

		v.SetConfigName(applicationName)
		v.SetEnvPrefix(applicationName)
		if err := AutomaticEnv(v); err != nil {
			return err
		}

		return BindFlags(fs)(v)
	}
}
