// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

// PSEMNAMLEN, which counts the leading separator.
const maxNameLength = 31
