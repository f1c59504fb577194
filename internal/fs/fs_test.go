package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "m.cla")

	require.NoError(t, WriteAtomic(Default, path, 0o644, writeString("hello")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	_, err = os.Stat(path + tmpSuffix)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, WriteAtomic(Default, path, 0o644, writeString("replaced")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(data))
}

func TestWriteAtomic_Faults(t *testing.T) {
	custom := errors.New("disk full")
	tests := []struct {
		name  string
		fault Fault
		want  error
	}{
		{"write", Fault{FailAfterBytes: 3, Err: custom}, custom},
		{"sync", Fault{FailAfterBytes: -1, FailOnSync: true}, ErrInjected},
		{"close", Fault{FailAfterBytes: -1, FailOnClose: true}, ErrInjected},
		{"rename", Fault{FailAfterBytes: -1, FailOnRename: true}, ErrInjected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.cla")
			require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

			ffs := NewFaultyFS(nil)
			ffs.AddRule(tmpSuffix, tt.fault)

			err := WriteAtomic(ffs, path, 0o644, writeString("replacement"))
			require.ErrorIs(t, err, tt.want)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "original", string(data))
			_, err = os.Stat(path + tmpSuffix)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestWriteAtomic_CallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.cla")
	boom := errors.New("encode failed")

	err := WriteAtomic(Default, path, 0o644, func(io.Writer) error { return boom })
	require.ErrorIs(t, err, boom)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + tmpSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_LongestPatternWins(t *testing.T) {
	dir := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("m", Fault{FailAfterBytes: 0})
	ffs.AddRule("m.cla", NoFault)

	f, err := ffs.OpenFile(filepath.Join(dir, "m.cla"), os.O_CREATE|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.Write([]byte("ok"))
	assert.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = ffs.OpenFile(filepath.Join(dir, "m.bin"), os.O_CREATE|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrInjected)
	require.NoError(t, f.Close())
}
