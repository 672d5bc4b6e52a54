package semaphore

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helperModeEnv = "SEMSAFE_HELPER_MODE"
	helperArgEnv  = "SEMSAFE_HELPER_ARG"
)

// TestHelperProcess is not a real test.  It is the child side of the multi-process tests.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperModeEnv)
	if len(mode) == 0 {
		return
	}

	var err error
	switch mode {
	case "named":
		err = helperPostNamed(os.Getenv(helperArgEnv))
	case "shared":
		err = helperPostShared(os.Getenv(helperArgEnv))
	default:
		err = fmt.Errorf("unknown helper mode %q", mode)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(0)
}

// helperPostNamed opens an existing named semaphore and posts to it.
func helperPostNamed(name string) error {
	n := NewNamed()
	r, err := n.Open(name, OpenExisting, 0, 0)
	if err != nil {
		return err
	}

	defer n.Close()
	defer r.Release()

	if err := r.Post(); err != nil {
		return err
	}

	return nil
}

// helperPostShared attaches to slot 0 of a shared file and posts to it.
func helperPostShared(path string) error {
	region, err := OpenSharedFile(path, 1)
	if err != nil {
		return err
	}

	defer region.Close()

	u := NewUnnamedAt(region.Slot(0))
	r, err := u.Attach()
	if err != nil {
		return err
	}

	err = r.Post()
	r.Release()
	if closeErr := u.Close(); err == nil {
		err = closeErr
	}

	return err
}

func startHelper(t *testing.T, mode, arg string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(), helperModeEnv+"="+mode, helperArgEnv+"="+arg)
	cmd.Stderr = os.Stderr
	require.NoError(t, cmd.Start())
	return cmd
}

func testProcessNamed(t *testing.T) {
	requireSemaphores(t)

	var (
		assert  = assert.New(t)
		require = require.New(t)
		name    = testName(t)
		owner   = NewNamed()
	)

	r, err := owner.Open(name, CreateExclusive, 0600, 0)
	require.NoError(err)

	cmd := startHelper(t, "named", name)
	within(t, testTimeout, func() {
		assert.NoError(r.Wait())
	})

	assert.NoError(cmd.Wait())

	r.Release()
	assert.NoError(owner.Close())
}

func testProcessShared(t *testing.T) {
	requireUnnamed(t)

	var (
		assert  = assert.New(t)
		require = require.New(t)
		path    = filepath.Join(t.TempDir(), "shared")
	)

	region, err := OpenSharedFile(path, 1)
	require.NoError(err)
	defer region.Close()

	u := NewUnnamedAt(region.Slot(0))
	r, err := u.InitWith(true, 0)
	require.NoError(err)

	cmd := startHelper(t, "shared", path)
	within(t, testTimeout, func() {
		assert.NoError(r.Wait())
	})

	assert.NoError(cmd.Wait())

	r.Release()
	assert.NoError(u.Close())
}

func TestProcess(t *testing.T) {
	if testing.Short() {
		t.Skip("multi-process tests start child processes")
	}

	t.Run("Named", testProcessNamed)
	t.Run("Shared", testProcessShared)
}
