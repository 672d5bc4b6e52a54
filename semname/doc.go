// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package semname generates collision-improbable names for anonymous semaphores.

A name is built from random bytes drawn from a Source (crypto/rand by default) and rendered
as text by an Encoder.  The default encoder produces a base62 KSUID, which contains only
ASCII letters and digits and has no padding, so the result is usable as a POSIX semaphore
name on every platform, including those with short name limits.
*/
package semname
