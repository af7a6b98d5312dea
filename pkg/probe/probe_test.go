package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProbeRegularFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file", "hello, world\n")

	res := New(Options{}).Probe("file", dir)

	require.Equal(t, File, res.Kind)
	require.NotNil(t, res.Record)
	assert.Equal(t, filepath.Join(dir, "file"), res.Record.Name)
	assert.Equal(t, dir, res.Record.Dir)
	assert.NotZero(t, res.Record.Inode)
	assert.Equal(t, uint64(1), res.Record.Nlink)
	assert.Equal(t, int64(13), res.Key.Size)
	assert.NotZero(t, res.Key.Device)
	assert.Equal(t, uint32(0o644), res.Key.Perms)
}

func TestProbeMissing(t *testing.T) {
	res := New(Options{}).Probe("nope", t.TempDir())
	assert.Equal(t, Missing, res.Kind)
}

func TestProbeDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	res := New(Options{}).Probe("sub", dir)
	require.Equal(t, Dir, res.Kind)
	assert.Equal(t, filepath.Join(dir, "sub"), res.Path)
}

func TestProbeSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target", "content")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	require.NoError(t, os.Symlink(target, filepath.Join(dir, "filelink")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "subdir"), filepath.Join(dir, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "broken")))

	t.Run("not followed", func(t *testing.T) {
		res := New(Options{}).Probe("filelink", dir)
		assert.Equal(t, Missing, res.Kind)
	})

	t.Run("followed to file", func(t *testing.T) {
		res := New(Options{FollowSymlinks: true}).Probe("filelink", dir)
		require.Equal(t, File, res.Kind)

		// identity comes from the target inode, the name stays the link's
		direct := New(Options{}).Probe("target", dir)
		assert.Equal(t, direct.Record.Inode, res.Record.Inode)
		assert.Equal(t, filepath.Join(dir, "filelink"), res.Record.Name)
	})

	t.Run("followed to directory", func(t *testing.T) {
		res := New(Options{FollowSymlinks: true}).Probe("dirlink", dir)
		assert.Equal(t, Dir, res.Kind)
	})

	t.Run("broken link", func(t *testing.T) {
		res := New(Options{FollowSymlinks: true}).Probe("broken", dir)
		assert.Equal(t, Missing, res.Kind)
	})
}

func TestProbeIgnoreEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty", "")

	res := New(Options{IgnoreEmpty: true}).Probe("empty", dir)
	assert.Equal(t, Missing, res.Kind)

	res = New(Options{}).Probe("empty", dir)
	assert.Equal(t, File, res.Kind)
}

func TestID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a", "x")

	id1, err := ID(filepath.Join(dir, "a"))
	require.NoError(t, err)
	id2, err := ID(filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	_, err = ID(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
