// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type keyUnmarshaler interface {
	UnmarshalKey(string, interface{}, ...viper.DecoderConfigOption) error
}

type defaulter interface {
	SetDefault(string, interface{})
}

type Defaults map[string]interface{}

// ApplyDefaults sets each key in v as a default.
func ApplyDefaults(d defaulter, v Defaults) {
	for key, value := range v {
		d.SetDefault(key, value)
	}
}

// FileModeHookFunc decodes os.FileMode values.  Strings are parsed with their base prefix,
// so "0600" is octal.
func FileModeHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(os.FileMode(0)) || from == to {
			return data, nil
		}

		mode, err := cast.ToUint32E(data)
		if err != nil {
			return nil, err
		}

		return os.FileMode(mode), nil
	}
}

// DecodeHook is the decode hook used by UnmarshalKey.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		FileModeHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// UnmarshalKey decodes the given key into value using DecodeHook.  A missing key leaves value untouched.
func UnmarshalKey(u keyUnmarshaler, key string, value interface{}) error {
	return u.UnmarshalKey(key, value, viper.DecodeHook(DecodeHook()))
}
