// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

//go:build unix && !darwin

package semaphore

// NAME_MAX less the "sem." prefix glibc adds under /dev/shm, plus the leading separator.
const maxNameLength = 252
