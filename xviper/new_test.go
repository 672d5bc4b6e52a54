package xviper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNewNoOptions(t *testing.T) {
	v, err := New()
	assert.NotNil(t, v)
	assert.NoError(t, err)
}

func testNewError(t *testing.T) {
	var (
		assert        = assert.New(t)
		expectedError = errors.New("expected")
		second        bool
	)

	v, err := New(
		func(*viper.Viper) error { return expectedError },
		func(*viper.Viper) error { second = true; return nil },
	)

	assert.Nil(v)
	assert.Equal(expectedError, err)
	assert.False(second)
}

func testNewStdOptions(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		dir  = t.TempDir()
		file = filepath.Join(dir, "custom.yaml")
		fs   = pflag.NewFlagSet("test", pflag.ContinueOnError)
	)

	require.NoError(os.WriteFile(file, []byte("semaphore:\n  spinLimit: 7\n"), 0600))

	fs.String(DefaultFileFlag, "", "config file")
	fs.String(DefaultNameFlag, "", "config name")
	fs.Int("attempts", 3, "attempts")
	require.NoError(fs.Parse([]string{"--" + DefaultFileFlag, file}))

	v, err := New(StdOptions("semsafe", fs), ReadInConfig)
	require.NoError(err)
	require.NotNil(v)
	assert.Equal(7, v.GetInt("semaphore.spinLimit"))
	assert.Equal(3, v.GetInt("attempts"))
	assert.Equal(file, v.ConfigFileUsed())
}

func testNewConfigName(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		dir = t.TempDir()
		fs  = pflag.NewFlagSet("test", pflag.ContinueOnError)
	)

	require.NoError(os.WriteFile(filepath.Join(dir, "renamed.yaml"), []byte("value: 5\n"), 0600))

	fs.String(DefaultNameFlag, "", "config name")
	require.NoError(fs.Parse([]string{"--" + DefaultNameFlag, "renamed"}))

	v, err := New(
		func(v *viper.Viper) error { v.AddConfigPath(dir); return nil },
		BindFlags(fs),
		ReadInConfig,
	)

	require.NoError(err)
	assert.Equal(5, v.GetInt("value"))
}

func testNewMissingConfig(t *testing.T) {
	v, err := New(
		func(v *viper.Viper) error {
			v.AddConfigPath(t.TempDir())
			v.SetConfigName("nosuch")
			return nil
		},
		BindFlags(nil),
		ReadInConfig,
	)

	assert.NotNil(t, v)
	assert.NoError(t, err)
}

func testNewEnvironment(t *testing.T) {
	t.Setenv("SEMSAFE_SEMAPHORE_SPINLIMIT", "12")

	v, err := New(StdOptions("semsafe", nil))
	require.NoError(t, err)
	assert.Equal(t, 12, v.GetInt("semaphore.spinlimit"))
}

func TestNew(t *testing.T) {
	t.Run("NoOptions", testNewNoOptions)
	t.Run("Error", testNewError)
	t.Run("StdOptions", testNewStdOptions)
	t.Run("ConfigName", testNewConfigName)
	t.Run("MissingConfig", testNewMissingConfig)
	t.Run("Environment", testNewEnvironment)
}
