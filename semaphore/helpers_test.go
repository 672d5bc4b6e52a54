package semaphore

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/semsafe/semname"
)

const testTimeout = 5 * time.Second

// fixedNow pins the timestamp of generated names, making them a pure function of the random bytes.
func fixedNow() time.Time {
	return time.Unix(1700000000, 0)
}

// requireUnnamed skips platforms without sem_init.
func requireUnnamed(t *testing.T) {
	t.Helper()
	requireSemaphores(t)
	if runtime.GOOS == "darwin" {
		t.Skip("sem_init is not implemented on darwin")
	}
}

// testName returns a name no other test or process will use.
func testName(t *testing.T) string {
	t.Helper()
	name, err := semname.Generator{Prefix: "t"}.Generate()
	require.NoError(t, err)
	t.Cleanup(func() { Unlink(name) })
	return name
}

// initUnnamed returns a ready Unnamed that is closed when the test ends.
func initUnnamed(t *testing.T, count uint32) (*Unnamed, *Ref) {
	t.Helper()
	requireUnnamed(t)

	u := NewUnnamed()
	r, err := u.InitWith(false, count)
	require.NoError(t, err)
	require.NotNil(t, r)

	t.Cleanup(func() {
		r.Release()
		u.Close()
	})

	return u, r
}

// within fails the test if f does not return in time.
func within(t *testing.T, d time.Duration, f func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()

	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("did not finish within %s", d)
	}
}
