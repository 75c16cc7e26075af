//go:build linux
// +build linux

package gds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestModeFlags(t *testing.T) {
	cases := []struct {
		mode Mode
		want int
	}{
		{ModeRead, unix.O_RDONLY},
		{ModeReadWrite, unix.O_RDWR},
		{ModeWriteTrunc, unix.O_CREAT | unix.O_WRONLY | unix.O_TRUNC},
		{ModeWriteTruncReadWrite, unix.O_CREAT | unix.O_RDWR | unix.O_TRUNC},
		{ModeAppend, unix.O_CREAT | unix.O_WRONLY | unix.O_APPEND},
		{ModeAppendReadWrite, unix.O_CREAT | unix.O_RDWR | unix.O_APPEND},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			got, err := tc.mode.flags()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModeFlags_Invalid(t *testing.T) {
	_, err := Mode("rw").flags()
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = New("/tmp/t.bin", Mode("x"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestWithDirectIO(t *testing.T) {
	resetDriver(t)
	lib := &fakeLib{}

	f, err := newFile(lib, "/tmp/t.bin", ModeWriteTrunc, WithDirectIO())
	require.NoError(t, err)
	assert.NotZero(t, f.flags&unix.O_DIRECT, "O_DIRECT must be ORed into the flags")
	assert.Equal(t, unix.O_CREAT|unix.O_WRONLY|unix.O_TRUNC|unix.O_DIRECT, f.flags)

	plain, err := newFile(lib, "/tmp/t.bin", ModeWriteTrunc)
	require.NoError(t, err)
	assert.Zero(t, plain.flags&unix.O_DIRECT)
}
