// Package devfs provides the device filesystem, usually mounted at
// /dev: a single flat directory mapping names to device inodes. Entries
// are registered by kernel initialization code through Add and Remove,
// not through the generic inode operations, which the root rejects.
package devfs

import (
	"sort"
	"sync"

	vfs "kernvfs/pkg/vfs"
)

// DevFS is a flat name registry exposed as a single-directory
// filesystem.
type DevFS struct {
	mu      sync.RWMutex
	devices map[string]vfs.INode
}

// New creates a new, empty device filesystem.
func New() *DevFS {
	return &DevFS{
		devices: make(map[string]vfs.INode),
	}
}

// Add registers a device inode under the given name.
func (fs *DevFS) Add(name string, device vfs.INode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.devices[name]; exists {
		return vfs.ErrEntryExists
	}

	fs.devices[name] = device
	return nil
}

// Remove unregisters the device with the given name.
func (fs *DevFS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.devices[name]; !exists {
		return vfs.ErrEntryNotFound
	}

	delete(fs.devices, name)
	return nil
}

// Sync implements vfs.FileSystem.Sync.
func (fs *DevFS) Sync() error {
	return nil
}

// Root implements vfs.FileSystem.Root.
func (fs *DevFS) Root() vfs.INode {
	return &rootInode{fs: fs}
}

// Metadata implements vfs.FileSystem.Metadata.
func (fs *DevFS) Metadata() vfs.FSMetadata {
	return vfs.FSMetadata{}
}

// rootInode is the fixed directory inode of a DevFS. Its id is always 1
// and its size is the current number of registered devices. All
// mutation goes through DevFS.Add and DevFS.Remove, so the generic
// object-model mutators are unsupported.
type rootInode struct {
	fs *DevFS
}

// ReadAt implements vfs.INode.ReadAt.
func (n *rootInode) ReadAt(p []byte, off int64) (int, error) {
	return 0, vfs.ErrIsDirectory
}

// WriteAt implements vfs.INode.WriteAt.
func (n *rootInode) WriteAt(p []byte, off int64) (int, error) {
	return 0, vfs.ErrIsDirectory
}

// Metadata implements vfs.INode.Metadata.
func (n *rootInode) Metadata() (vfs.Metadata, error) {
	n.fs.mu.RLock()
	defer n.fs.mu.RUnlock()

	return vfs.Metadata{
		Inode:       1,
		Size:        int64(len(n.fs.devices)),
		Type:        vfs.TypeDirectory,
		Permissions: 0o666,
		Links:       1,
	}, nil
}

// SetMetadata implements vfs.INode.SetMetadata.
func (n *rootInode) SetMetadata(meta vfs.Metadata) error {
	return vfs.ErrUnsupported
}

// SyncAll implements vfs.INode.SyncAll.
func (n *rootInode) SyncAll() error {
	return nil
}

// SyncData implements vfs.INode.SyncData.
func (n *rootInode) SyncData() error {
	return nil
}

// Resize implements vfs.INode.Resize.
func (n *rootInode) Resize(size int64) error {
	return vfs.ErrIsDirectory
}

// Create implements vfs.INode.Create.
func (n *rootInode) Create(name string, typ vfs.FileType, perms uint16) (vfs.INode, error) {
	return nil, vfs.ErrUnsupported
}

// Link implements vfs.INode.Link.
func (n *rootInode) Link(name string, other vfs.INode) error {
	return vfs.ErrUnsupported
}

// Unlink implements vfs.INode.Unlink.
func (n *rootInode) Unlink(name string) error {
	return vfs.ErrUnsupported
}

// Move implements vfs.INode.Move.
func (n *rootInode) Move(oldName string, target vfs.INode, newName string) error {
	return vfs.ErrUnsupported
}

// Find implements vfs.INode.Find. The registry has no parent concept,
// so ".." resolves to the root itself.
func (n *rootInode) Find(name string) (vfs.INode, error) {
	switch name {
	case ".", "..":
		return n.fs.Root(), nil
	}

	n.fs.mu.RLock()
	defer n.fs.mu.RUnlock()

	device, ok := n.fs.devices[name]
	if !ok {
		return nil, vfs.ErrEntryNotFound
	}

	return device, nil
}

// GetEntry implements vfs.INode.GetEntry. Device names follow "." and
// ".." in sorted order.
func (n *rootInode) GetEntry(i int) (string, error) {
	switch i {
	case 0:
		return ".", nil
	case 1:
		return "..", nil
	}

	n.fs.mu.RLock()
	defer n.fs.mu.RUnlock()

	if i < 0 || i-2 >= len(n.fs.devices) {
		return "", vfs.ErrEntryNotFound
	}

	names := make([]string, 0, len(n.fs.devices))
	for name := range n.fs.devices {
		names = append(names, name)
	}
	sort.Strings(names)

	return names[i-2], nil
}

// FileSystem implements vfs.INode.FileSystem.
func (n *rootInode) FileSystem() vfs.FileSystem {
	return n.fs
}
