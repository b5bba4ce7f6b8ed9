package ramdisk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vfs "kernvfs/pkg/vfs"
	"kernvfs/pkg/vfs/devfs"
)

func TestNew(t *testing.T) {
	fs := New()
	require.NotNil(t, fs)

	meta, err := fs.Root().Metadata()
	require.NoError(t, err)

	assert.Equal(t, vfs.TypeDirectory, meta.Type)
	assert.Equal(t, 1, meta.Links)
	assert.NotZero(t, meta.Inode)

	// The root's parent is the root itself.
	parent, err := fs.Root().Find("..")
	require.NoError(t, err)

	parentMeta, err := parent.Metadata()
	require.NoError(t, err)
	assert.Equal(t, meta.Inode, parentMeta.Inode)
}

func TestCreateWriteRead(t *testing.T) {
	fs := New()
	root := fs.Root()

	file, err := root.Create("hello.txt", vfs.TypeFile, 0o777)
	require.NoError(t, err)

	content := []byte("This is a file!")
	n, err := file.WriteAt(content, 0)
	require.NoError(t, err)
	assert.Equal(t, len(content), n)

	buf := make([]byte, 20)
	n, err = file.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, content, buf[:n])

	meta, err := file.Metadata()
	require.NoError(t, err)
	assert.Equal(t, int64(15), meta.Size)
}

func TestReadClamped(t *testing.T) {
	fs := New()
	root := fs.Root()

	file, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	_, err = file.WriteAt([]byte("abc"), 0)
	require.NoError(t, err)

	// Reading past the end is not an error, it just reads nothing.
	buf := make([]byte, 8)
	n, err := file.ReadAt(buf, 100)
	require.NoError(t, err)
	assert.Zero(t, n)

	// A read straddling the end is clamped.
	n, err = file.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('c'), buf[0])
}

func TestWriteGapZeroFilled(t *testing.T) {
	fs := New()
	root := fs.Root()

	file, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	_, err = file.WriteAt([]byte("end"), 5)
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := file.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 'e', 'n', 'd'}, buf)
}

func TestDirectoryIO(t *testing.T) {
	fs := New()
	root := fs.Root()

	dir, err := root.Create("d", vfs.TypeDirectory, 0o755)
	require.NoError(t, err)

	_, err = dir.ReadAt(make([]byte, 4), 0)
	assert.ErrorIs(t, err, vfs.ErrIsDirectory)

	_, err = dir.WriteAt([]byte("x"), 0)
	assert.ErrorIs(t, err, vfs.ErrIsDirectory)

	err = dir.Resize(16)
	assert.ErrorIs(t, err, vfs.ErrNotFile)
}

func TestResize(t *testing.T) {
	fs := New()
	root := fs.Root()

	file, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	_, err = file.WriteAt([]byte("0123456789"), 0)
	require.NoError(t, err)

	require.NoError(t, file.Resize(4))
	meta, err := file.Metadata()
	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.Size)

	require.NoError(t, file.Resize(8))
	buf := make([]byte, 8)
	n, err := file.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{'0', '1', '2', '3', 0, 0, 0, 0}, buf)
}

func TestGetEntryOrder(t *testing.T) {
	fs := New()
	root := fs.Root()

	_, err := root.Create("b", vfs.TypeFile, 0o644)
	require.NoError(t, err)
	_, err = root.Create("a", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	first, err := root.GetEntry(0)
	require.NoError(t, err)
	assert.Equal(t, ".", first)

	second, err := root.GetEntry(1)
	require.NoError(t, err)
	assert.Equal(t, "..", second)

	names, err := vfs.List(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "..", "a", "b"}, names)

	_, err = root.GetEntry(4)
	assert.ErrorIs(t, err, vfs.ErrEntryNotFound)
}

func TestFind(t *testing.T) {
	fs := New()
	root := fs.Root()

	_, err := root.Find("missing")
	assert.ErrorIs(t, err, vfs.ErrEntryNotFound)

	rootMeta, err := root.Metadata()
	require.NoError(t, err)

	// Repeated "." lookups always name the same inode.
	for i := 0; i < 3; i++ {
		self, err := root.Find(".")
		require.NoError(t, err)

		meta, err := self.Metadata()
		require.NoError(t, err)
		assert.Equal(t, rootMeta.Inode, meta.Inode)
	}

	file, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	_, err = file.Find(".")
	assert.ErrorIs(t, err, vfs.ErrNotDirectory)
}

func TestLink(t *testing.T) {
	fs := New()
	root := fs.Root()

	file, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	require.NoError(t, root.Link("g", file))

	meta, err := file.Metadata()
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Links)

	// Both names resolve to the same inode.
	other, err := root.Find("g")
	require.NoError(t, err)
	otherMeta, err := other.Metadata()
	require.NoError(t, err)
	assert.Equal(t, meta.Inode, otherMeta.Inode)

	// Links reject duplicates, unlike Create.
	err = root.Link("g", file)
	assert.ErrorIs(t, err, vfs.ErrEntryExists)

	dir, err := root.Create("d", vfs.TypeDirectory, 0o755)
	require.NoError(t, err)
	err = root.Link("d2", dir)
	assert.ErrorIs(t, err, vfs.ErrIsDirectory)
}

func TestLinkForeignBackend(t *testing.T) {
	fs := New()
	root := fs.Root()

	devices := devfs.New()
	err := root.Link("null", devfs.NewNull(devices))
	assert.ErrorIs(t, err, vfs.ErrNotSameFileSystem)
}

func TestCreateDuplicateReplaces(t *testing.T) {
	fs := New()
	root := fs.Root()

	first, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)
	firstMeta, err := first.Metadata()
	require.NoError(t, err)

	second, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)
	secondMeta, err := second.Metadata()
	require.NoError(t, err)

	// Ids are never reused, so the replacement is observable.
	assert.NotEqual(t, firstMeta.Inode, secondMeta.Inode)

	found, err := root.Find("f")
	require.NoError(t, err)
	foundMeta, err := found.Metadata()
	require.NoError(t, err)
	assert.Equal(t, secondMeta.Inode, foundMeta.Inode)
}

func TestUnlink(t *testing.T) {
	fs := New()
	root := fs.Root()

	file, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)
	require.NoError(t, root.Link("g", file))

	require.NoError(t, root.Unlink("f"))

	_, err = root.Find("f")
	assert.ErrorIs(t, err, vfs.ErrEntryNotFound)

	// The second name still works and the link count dropped.
	other, err := root.Find("g")
	require.NoError(t, err)
	meta, err := other.Metadata()
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Links)

	err = root.Unlink("missing")
	assert.ErrorIs(t, err, vfs.ErrEntryNotFound)

	err = root.Unlink(".")
	assert.ErrorIs(t, err, vfs.ErrDirectoryNotEmpty)
	err = root.Unlink("..")
	assert.ErrorIs(t, err, vfs.ErrDirectoryNotEmpty)
}

func TestUnlinkDirectory(t *testing.T) {
	fs := New()
	root := fs.Root()

	dir, err := root.Create("d", vfs.TypeDirectory, 0o755)
	require.NoError(t, err)
	_, err = dir.Create("child", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	err = root.Unlink("d")
	assert.ErrorIs(t, err, vfs.ErrDirectoryNotEmpty)

	require.NoError(t, dir.Unlink("child"))
	require.NoError(t, root.Unlink("d"))
}

func TestMove(t *testing.T) {
	fs := New()
	root := fs.Root()

	src, err := root.Create("src", vfs.TypeDirectory, 0o755)
	require.NoError(t, err)
	dst, err := root.Create("dst", vfs.TypeDirectory, 0o755)
	require.NoError(t, err)

	file, err := src.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)
	fileMeta, err := file.Metadata()
	require.NoError(t, err)

	require.NoError(t, src.Move("f", dst, "moved"))

	_, err = src.Find("f")
	assert.ErrorIs(t, err, vfs.ErrEntryNotFound)

	moved, err := dst.Find("moved")
	require.NoError(t, err)
	movedMeta, err := moved.Metadata()
	require.NoError(t, err)
	assert.Equal(t, fileMeta.Inode, movedMeta.Inode)

	// The move is link-then-unlink, so the link count is back to one.
	assert.Equal(t, 1, movedMeta.Links)
}

func TestMoveRename(t *testing.T) {
	fs := New()
	root := fs.Root()

	_, err := root.Create("old", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	require.NoError(t, root.Move("old", root, "new"))

	_, err = root.Find("old")
	assert.ErrorIs(t, err, vfs.ErrEntryNotFound)
	_, err = root.Find("new")
	require.NoError(t, err)
}

func TestMoveDestinationTaken(t *testing.T) {
	fs := New()
	root := fs.Root()

	_, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)
	dst, err := root.Create("dst", vfs.TypeDirectory, 0o755)
	require.NoError(t, err)
	_, err = dst.Create("taken", vfs.TypeFile, 0o644)
	require.NoError(t, err)

	err = root.Move("f", dst, "taken")
	assert.ErrorIs(t, err, vfs.ErrEntryExists)

	// The source entry survives a failed move.
	_, err = root.Find("f")
	require.NoError(t, err)
}

func TestSetMetadata(t *testing.T) {
	fs := New()
	root := fs.Root()

	file, err := root.Create("f", vfs.TypeFile, 0o644)
	require.NoError(t, err)
	_, err = file.WriteAt([]byte("data"), 0)
	require.NoError(t, err)

	before, err := file.Metadata()
	require.NoError(t, err)

	update := before
	update.Permissions = 0o600
	update.UID = 7
	update.GID = 8
	update.AccessTime = vfs.Timespec{Sec: 100, Nanosec: 5}

	// Backend-controlled fields must not be writable.
	update.Type = vfs.TypeDirectory
	update.Inode = 9999
	update.Size = 9999
	update.Links = 9999

	require.NoError(t, file.SetMetadata(update))

	after, err := file.Metadata()
	require.NoError(t, err)
	assert.Equal(t, uint16(0o600), after.Permissions)
	assert.Equal(t, 7, after.UID)
	assert.Equal(t, 8, after.GID)
	assert.Equal(t, vfs.Timespec{Sec: 100, Nanosec: 5}, after.AccessTime)

	assert.Equal(t, before.Type, after.Type)
	assert.Equal(t, before.Inode, after.Inode)
	assert.Equal(t, int64(4), after.Size)
	assert.Equal(t, before.Links, after.Links)
}

func TestSync(t *testing.T) {
	fs := New()

	assert.NoError(t, fs.Sync())
	assert.NoError(t, fs.Root().SyncAll())
	assert.NoError(t, fs.Root().SyncData())
}

func BenchmarkWriteAt(b *testing.B) {
	fs := New()
	file, _ := fs.Root().Create("bench", vfs.TypeFile, 0o644)

	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 256)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		file.WriteAt(data, 0)
	}
}

func BenchmarkFind(b *testing.B) {
	fs := New()
	root := fs.Root()
	root.Create("target", vfs.TypeFile, 0o644)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root.Find("target")
	}
}
