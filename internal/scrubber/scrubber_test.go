package scrubber

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub writes an executable shell script standing in for the anonymizer.
func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub anonymizer is a shell script")
	}
	path := filepath.Join(t.TempDir(), "fake-anonymizer")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestArgs(t *testing.T) {
	s := &Scrubber{Path: "/bin/true", KeepPrivateTags: true}
	assert.Equal(t, []string{"--keepPrivateTags", "in/x", "out/x"}, s.Args("in/x", "out/x"))

	s.KeepPrivateTags = false
	assert.Equal(t, []string{"in/x", "out/x"}, s.Args("in/x", "out/x"))
}

func TestRun_PassesArgumentsVerbatim(t *testing.T) {
	// arguments with spaces must reach the tool as single argv entries
	stub := writeStub(t, `
[ "$1" = "--keepPrivateTags" ] || exit 3
cp "$2"/* "$3"/
echo "copied"
`)
	src := filepath.Join(t.TempDir(), "subj A")
	dst := filepath.Join(t.TempDir(), "subj A")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.MkdirAll(dst, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "IM1"), []byte("x"), 0644))

	s, err := New(stub, true)
	require.NoError(t, err)

	out, err := s.Run(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Contains(t, out, "copied")
	assert.FileExists(t, filepath.Join(dst, "IM1"))
}

func TestRun_NonZeroExit(t *testing.T) {
	stub := writeStub(t, "echo 'boom' >&2\nexit 4\n")

	s, err := New(stub, true)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), "a", "b")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.ExitCode)
	assert.Contains(t, exitErr.Error(), "boom")
	assert.Contains(t, exitErr.Error(), "--keepPrivateTags a b")
}

func TestRun_Cancelled(t *testing.T) {
	stub := writeStub(t, "sleep 5\n")

	s, err := New(stub, true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Run(ctx, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookupBinary_Missing(t *testing.T) {
	_, err := LookupBinary("definitely-not-an-anonymizer-binary")
	assert.ErrorIs(t, err, ErrNotInstalled)

	_, err = LookupBinary(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestLookupBinary_NotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no exec bit on windows")
	}
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := LookupBinary(path)
	assert.ErrorIs(t, err, ErrNotInstalled)
}
