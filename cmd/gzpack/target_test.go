package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressTarget(t *testing.T) {
	assert.Equal(t, "notes.txt.gz", compressTarget("notes.txt", false))
	assert.Equal(t, "", compressTarget("notes.txt", true))
	assert.Equal(t, "", compressTarget("-", false))
}

func TestDecompressTarget(t *testing.T) {
	for _, tc := range []struct {
		input, stored string
		stdout        bool
		want          string
	}{
		{input: "dir/a.txt.gz", want: filepath.Join("dir", "a.txt")},
		{input: "dir/a.txt.gz", stored: "b.txt", want: filepath.Join("dir", "b.txt")},
		{input: "dir/a.txt.gz", stored: "../../etc/passwd", want: filepath.Join("dir", "passwd")},
		{input: "dir/a.txt.gz", stored: "..", want: filepath.Join("dir", "a.txt")},
		{input: "-", stored: "b.txt", want: "b.txt"},
		{input: "-", want: ""},
		{input: "a.txt.gz", stored: "b.txt", stdout: true, want: ""},
	} {
		got, err := decompressTarget(tc.input, tc.stored, tc.stdout)
		require.NoError(t, err, "%+v", tc)
		assert.Equal(t, tc.want, got, "%+v", tc)
	}

	_, err := decompressTarget("a.txt", "", false)
	assert.Error(t, err)
	_, err = decompressTarget(".gz", "", false)
	assert.Error(t, err)
}
