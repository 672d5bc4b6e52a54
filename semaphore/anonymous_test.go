package semaphore

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/semsafe/semname"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sys/unix"
)

// recordingEncoder remembers every name it produced.
type recordingEncoder struct {
	names []string
}

func (re *recordingEncoder) Encode(payload []byte) (string, error) {
	text, err := semname.KSUIDEncoder{}.Encode(payload)
	re.names = append(re.names, semname.Separator+text)
	return text, err
}

func testCreateAnonymousInvisible(t *testing.T) {
	requireSemaphores(t)

	var (
		assert  = assert.New(t)
		require = require.New(t)
		encoder = new(recordingEncoder)
	)

	n, r, err := CreateAnonymous(1, WithGenerator(semname.Generator{Encoder: encoder}))
	require.NoError(err)
	require.NotNil(n)
	require.NotNil(r)
	require.Len(encoder.names, 1)

	_, err = NewNamed().Open(encoder.names[0], OpenExisting, 0, 0)
	assert.ErrorIs(err, unix.ENOENT)

	// an unrelated create under the same name gets a different semaphore
	unrelated := NewNamed()
	other, err := unrelated.Open(encoder.names[0], OpenOrCreate, 0600, 0)
	require.NoError(err)
	Unlink(encoder.names[0])

	acquired, err := other.TryWait()
	require.NoError(err)
	assert.False(acquired)

	acquired, err = r.TryWait()
	require.NoError(err)
	assert.True(acquired)

	other.Release()
	assert.NoError(unrelated.Close())

	r.Release()
	assert.NoError(n.Close())
}

func testCreateAnonymousCollision(t *testing.T) {
	requireSemaphores(t)

	var (
		assert  = assert.New(t)
		require = require.New(t)

		observed, logs = observer.New(zapcore.DebugLevel)
		payload        = bytes.Repeat([]byte{0x5A}, semname.PayloadSize)
		fresh          = bytes.Repeat([]byte{0xA5}, semname.PayloadSize)
		source         = bytes.NewReader(append(append([]byte{}, payload...), fresh...))
		encoder        = semname.EncoderFunc(func(p []byte) (string, error) {
			return semname.KSUIDEncoder{Now: fixedNow}.Encode(p)
		})
	)

	taken, err := semname.Generator{Source: bytes.NewReader(payload), Encoder: encoder}.Generate()
	require.NoError(err)

	squatter := NewNamed()
	s, err := squatter.Open(taken, CreateExclusive, 0600, 0)
	require.NoError(err)
	defer func() {
		s.Release()
		squatter.Close()
		Unlink(taken)
	}()

	n, r, err := CreateAnonymous(0,
		WithLogger(zap.New(observed)),
		WithGenerator(semname.Generator{Source: source, Encoder: encoder}),
	)

	require.NoError(err)
	assert.False(r.Equal(s))
	assert.Equal(1, logs.FilterMessage("anonymous semaphore name collision").Len())

	r.Release()
	assert.NoError(n.Close())
}

func testCreateAnonymousExhausted(t *testing.T) {
	requireSemaphores(t)

	var (
		assert  = assert.New(t)
		require = require.New(t)
		payload = bytes.Repeat([]byte{0x33}, semname.PayloadSize)
		encoder = semname.EncoderFunc(func(p []byte) (string, error) {
			return semname.KSUIDEncoder{Now: fixedNow}.Encode(p)
		})
	)

	taken, err := semname.Generator{Source: bytes.NewReader(payload), Encoder: encoder}.Generate()
	require.NoError(err)

	squatter := NewNamed()
	s, err := squatter.Open(taken, CreateExclusive, 0600, 0)
	require.NoError(err)
	defer func() {
		s.Release()
		squatter.Close()
		Unlink(taken)
	}()

	n, r, err := CreateAnonymous(0,
		WithAttempts(3),
		WithGenerator(semname.Generator{Source: bytes.NewReader(bytes.Repeat(payload, 3)), Encoder: encoder}),
	)

	assert.Nil(n)
	assert.Nil(r)
	assert.Equal(KindNameGenerationExhausted, KindOf(err))
	assert.ErrorIs(err, unix.EEXIST)
}

func testCreateAnonymousSourceFailure(t *testing.T) {
	var (
		assert      = assert.New(t)
		unavailable = errors.New("entropy unavailable")
	)

	n, r, err := CreateAnonymous(0, WithGenerator(semname.Generator{Source: iotest.ErrReader(unavailable)}))
	assert.Nil(n)
	assert.Nil(r)
	assert.ErrorIs(err, unavailable)
	assert.Equal(KindInitializationFailed, KindOf(err))
}

func testCreateAnonymousNameTooLong(t *testing.T) {
	n, r, err := CreateAnonymous(0, WithGenerator(semname.Generator{
		Encoder: semname.EncoderFunc(func([]byte) (string, error) {
			return string(bytes.Repeat([]byte{'x'}, maxNameLength)), nil
		}),
	}))

	assert.Nil(t, n)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func testCreateAnonymousUnlinkWarning(t *testing.T) {
	requireSemaphores(t)

	var (
		assert  = assert.New(t)
		require = require.New(t)

		observed, logs = observer.New(zapcore.WarnLevel)
		leaked         string
	)

	unlinkName = func(name string) error {
		leaked = name
		return unix.EACCES
	}

	defer func() {
		unlinkName = rawUnlink
		if len(leaked) > 0 {
			Unlink(leaked)
		}
	}()

	n, r, err := CreateAnonymous(2, WithLogger(zap.New(observed)))
	require.NotNil(n)
	require.NotNil(r)
	assert.True(IsWarning(err))
	assert.ErrorIs(err, unix.EACCES)
	assert.Equal(StateReady, n.State())

	acquired, err := r.TryWait()
	require.NoError(err)
	assert.True(acquired)

	warnings := logs.FilterMessage("anonymous semaphore name could not be unlinked").All()
	if assert.Len(warnings, 1) {
		assert.Equal(leaked, warnings[0].ContextMap()["name"])
	}

	r.Release()
	assert.NoError(n.Close())
}

func TestCreateAnonymous(t *testing.T) {
	t.Run("Invisible", testCreateAnonymousInvisible)
	t.Run("Collision", testCreateAnonymousCollision)
	t.Run("Exhausted", testCreateAnonymousExhausted)
	t.Run("SourceFailure", testCreateAnonymousSourceFailure)
	t.Run("NameTooLong", testCreateAnonymousNameTooLong)
	t.Run("UnlinkWarning", testCreateAnonymousUnlinkWarning)
}

func TestAnonymousShared(t *testing.T) {
	var (
		assert = assert.New(t)
		a      = NewAnonymous()
	)

	r, err := a.InitWith(true, 0)
	assert.Nil(r)
	assert.ErrorIs(err, ErrSharedUnsupported)
	assert.Equal(KindInitializationFailed, KindOf(err))

	r, err = a.InitExclusive(true, 0)
	assert.Nil(r)
	assert.ErrorIs(err, ErrSharedUnsupported)
	assert.Equal(StateUninit, a.State())
}
