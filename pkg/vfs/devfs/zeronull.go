package devfs

import (
	vfs "kernvfs/pkg/vfs"
)

// zeroNullDevice is the character device behind /dev/null and
// /dev/zero. Neither flavor touches any backing storage: null reads
// consume nothing, zero reads fill the buffer with zero bytes, and
// writes of either flavor report full length and discard the data.
type zeroNullDevice struct {
	fs   *DevFS
	null bool
}

// NewNull creates a null device inode for the given device filesystem.
func NewNull(fs *DevFS) vfs.INode {
	return &zeroNullDevice{fs: fs, null: true}
}

// NewZero creates a zero device inode for the given device filesystem.
func NewZero(fs *DevFS) vfs.INode {
	return &zeroNullDevice{fs: fs, null: false}
}

// ReadAt implements vfs.INode.ReadAt.
func (d *zeroNullDevice) ReadAt(p []byte, off int64) (int, error) {
	if d.null {
		return 0, nil
	}

	for i := range p {
		p[i] = 0
	}

	return len(p), nil
}

// WriteAt implements vfs.INode.WriteAt.
func (d *zeroNullDevice) WriteAt(p []byte, off int64) (int, error) {
	return len(p), nil
}

// Metadata implements vfs.INode.Metadata.
func (d *zeroNullDevice) Metadata() (vfs.Metadata, error) {
	return vfs.Metadata{
		Inode:       0,
		Type:        vfs.TypeCharDevice,
		Permissions: 0o666,
		Links:       1,
	}, nil
}

// SetMetadata implements vfs.INode.SetMetadata.
func (d *zeroNullDevice) SetMetadata(meta vfs.Metadata) error {
	return vfs.ErrUnsupported
}

// SyncAll implements vfs.INode.SyncAll.
func (d *zeroNullDevice) SyncAll() error {
	return nil
}

// SyncData implements vfs.INode.SyncData.
func (d *zeroNullDevice) SyncData() error {
	return nil
}

// Resize implements vfs.INode.Resize.
func (d *zeroNullDevice) Resize(size int64) error {
	return vfs.ErrUnsupported
}

// Create implements vfs.INode.Create.
func (d *zeroNullDevice) Create(name string, typ vfs.FileType, perms uint16) (vfs.INode, error) {
	return nil, vfs.ErrNotDirectory
}

// Link implements vfs.INode.Link.
func (d *zeroNullDevice) Link(name string, other vfs.INode) error {
	return vfs.ErrNotDirectory
}

// Unlink implements vfs.INode.Unlink.
func (d *zeroNullDevice) Unlink(name string) error {
	return vfs.ErrNotDirectory
}

// Move implements vfs.INode.Move.
func (d *zeroNullDevice) Move(oldName string, target vfs.INode, newName string) error {
	return vfs.ErrNotDirectory
}

// Find implements vfs.INode.Find.
func (d *zeroNullDevice) Find(name string) (vfs.INode, error) {
	return nil, vfs.ErrNotDirectory
}

// GetEntry implements vfs.INode.GetEntry.
func (d *zeroNullDevice) GetEntry(i int) (string, error) {
	return "", vfs.ErrNotDirectory
}

// FileSystem implements vfs.INode.FileSystem.
func (d *zeroNullDevice) FileSystem() vfs.FileSystem {
	return d.fs
}
