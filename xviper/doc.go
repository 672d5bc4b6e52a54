// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xviper contains viper construction options and the decoding conventions shared by this module's
configuration structs.
*/
package xviper
