//go:build race

package semaphore

// The race detector cannot see the ordering that system semaphores provide.
const raceEnabled = true
