package semaphore

import (
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapShared(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	region, err := MapShared(3)
	require.NoError(err)
	assert.Equal(3, region.Len())

	first, second := uintptr(region.Slot(0)), uintptr(region.Slot(1))
	assert.Zero(first % slotAlign)
	assert.GreaterOrEqual(second-first, Size())

	assert.Panics(func() { region.Slot(3) })
	assert.Panics(func() { region.Slot(-1) })

	assert.NoError(region.Close())
	assert.NoError(region.Close())
	assert.Zero(region.Len())
}

func testMapSharedNoSlots(t *testing.T) {
	region, err := MapShared(0)
	assert.Nil(t, region)
	assert.Error(t, err)

	region, err = OpenSharedFile(filepath.Join(t.TempDir(), "none"), -1)
	assert.Nil(t, region)
	assert.Error(t, err)
}

func testOpenSharedFile(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		path    = filepath.Join(t.TempDir(), "slots")
	)

	writer, err := OpenSharedFile(path, 2)
	require.NoError(err)
	defer writer.Close()

	reader, err := OpenSharedFile(path, 2)
	require.NoError(err)
	defer reader.Close()

	*(*uint32)(writer.Slot(1)) = 0xfeedface
	assert.Equal(uint32(0xfeedface), *(*uint32)(reader.Slot(1)))

	// a smaller request never shrinks the file
	small, err := OpenSharedFile(path, 1)
	require.NoError(err)
	assert.Equal(1, small.Len())
	assert.NoError(small.Close())

	large, err := OpenSharedFile(path, 4)
	require.NoError(err)
	assert.Equal(4, large.Len())
	assert.Equal(uint32(0xfeedface), *(*uint32)(large.Slot(1)))
	assert.NoError(large.Close())
}

func testOpenSharedFileMissingDirectory(t *testing.T) {
	region, err := OpenSharedFile(filepath.Join(t.TempDir(), "missing", "slots"), 1)
	assert.Nil(t, region)
	assert.Error(t, err)
}

func testSharedRegionSemaphores(t *testing.T) {
	requireUnnamed(t)

	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	region, err := MapShared(4)
	require.NoError(err)

	owners := make([]*Unnamed, region.Len())
	refs := make([]*Ref, region.Len())
	for i := range owners {
		owners[i] = NewUnnamedAt(region.Slot(i))
		refs[i], err = owners[i].InitWith(true, uint32(i))
		require.NoError(err)
	}

	for i, r := range refs {
		for j := 0; j < i; j++ {
			acquired, err := r.TryWait()
			require.NoError(err)
			assert.True(acquired)
		}

		acquired, err := r.TryWait()
		require.NoError(err)
		assert.False(acquired, "slot %d", i)
		assert.Equal(unsafe.Pointer(region.Slot(i)), r.p)
	}

	for i, r := range refs {
		r.Release()
		assert.NoError(owners[i].Close())
	}

	assert.NoError(region.Close())
}

func TestSharedRegion(t *testing.T) {
	t.Run("MapShared", testMapShared)
	t.Run("NoSlots", testMapSharedNoSlots)
	t.Run("OpenSharedFile", testOpenSharedFile)
	t.Run("MissingDirectory", testOpenSharedFileMissingDirectory)
	t.Run("Semaphores", testSharedRegionSemaphores)
}
