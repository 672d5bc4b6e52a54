//go:build !cgo

package semaphore

import "testing"

func requireSemaphores(t *testing.T) {
	t.Skip("system semaphores require cgo")
}
