//go:build !race

package semaphore

const raceEnabled = false
