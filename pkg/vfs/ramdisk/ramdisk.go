// Package ramdisk provides a tree-structured filesystem implementation
// that is stored entirely in RAM. It is the kernel's general-purpose
// scratch filesystem and the reference implementation of the vfs
// object model.
package ramdisk

import (
	"sort"
	"sync"
	"sync/atomic"

	vfs "kernvfs/pkg/vfs"
)

// nextInode hands out process-wide-unique inode ids. Ids are monotonic
// and never reused, even after deletion.
var nextInode atomic.Uint64

func nextInodeID() uint64 {
	return nextInode.Add(1)
}

// Ramdisk is an in-memory filesystem rooted at a single directory inode.
type Ramdisk struct {
	root *Inode
}

// New creates a new in-memory filesystem. The root directory's parent
// is itself.
func New() *Ramdisk {
	root := &Inode{
		children: make(map[string]*Inode),
		meta: vfs.Metadata{
			Inode:       nextInodeID(),
			Type:        vfs.TypeDirectory,
			Permissions: 0o777,
			Links:       1,
		},
	}

	fs := &Ramdisk{root: root}

	// Back-references are wired before the filesystem escapes; nothing
	// observes the root until New returns.
	root.parent = root
	root.fs = fs

	return fs
}

// Sync implements vfs.FileSystem.Sync. Memory-backed stores have
// nothing to flush.
func (fs *Ramdisk) Sync() error {
	return nil
}

// Root implements vfs.FileSystem.Root.
func (fs *Ramdisk) Root() vfs.INode {
	return fs.root
}

// Metadata implements vfs.FileSystem.Metadata.
func (fs *Ramdisk) Metadata() vfs.FSMetadata {
	fs.root.mu.RLock()
	defer fs.root.mu.RUnlock()

	// TODO: count the whole tree instead of only the root's children.
	return vfs.FSMetadata{
		Files:      len(fs.root.children),
		FilesFree:  0,
		MaxNameLen: 0,
	}
}

// Inode is one node of the ramdisk tree. The child map holds the only
// owning references; parent and filesystem links point backwards and
// never keep a node alive on their own.
type Inode struct {
	mu       sync.RWMutex
	parent   *Inode
	children map[string]*Inode
	meta     vfs.Metadata
	content  []byte
	fs       *Ramdisk
}

// ReadAt implements vfs.INode.ReadAt. Reads are clamped to the content
// length; out-of-range offsets read 0 bytes without error.
func (n *Inode) ReadAt(p []byte, off int64) (int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.meta.Type == vfs.TypeDirectory {
		return 0, vfs.ErrIsDirectory
	}

	if off < 0 {
		off = 0
	}

	size := int64(len(n.content))
	start := min(off, size)
	end := min(off+int64(len(p)), size)

	return copy(p, n.content[start:end]), nil
}

// WriteAt implements vfs.INode.WriteAt. Writing past the current length
// grows the content, zero-filling the gap.
func (n *Inode) WriteAt(p []byte, off int64) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.meta.Type == vfs.TypeDirectory {
		return 0, vfs.ErrIsDirectory
	}

	if off < 0 {
		off = 0
	}

	end := off + int64(len(p))
	if end > int64(len(n.content)) {
		grown := make([]byte, end)
		copy(grown, n.content)
		n.content = grown
	}

	copy(n.content[off:end], p)
	return len(p), nil
}

// Metadata implements vfs.INode.Metadata. Size is always derived from
// the current content length, never stored.
func (n *Inode) Metadata() (vfs.Metadata, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	meta := n.meta
	meta.Size = int64(len(n.content))
	return meta, nil
}

// SetMetadata implements vfs.INode.SetMetadata. Only the timestamps,
// permissions, and owner/group ids are applied.
func (n *Inode) SetMetadata(meta vfs.Metadata) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.meta.AccessTime = meta.AccessTime
	n.meta.ModificationTime = meta.ModificationTime
	n.meta.ChangeTime = meta.ChangeTime
	n.meta.Permissions = meta.Permissions
	n.meta.UID = meta.UID
	n.meta.GID = meta.GID

	return nil
}

// SyncAll implements vfs.INode.SyncAll.
func (n *Inode) SyncAll() error {
	return nil
}

// SyncData implements vfs.INode.SyncData.
func (n *Inode) SyncData() error {
	return nil
}

// Resize implements vfs.INode.Resize.
func (n *Inode) Resize(size int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.meta.Type != vfs.TypeFile {
		return vfs.ErrNotFile
	}

	if size < 0 {
		size = 0
	}

	if size <= int64(len(n.content)) {
		n.content = n.content[:size]
		return nil
	}

	grown := make([]byte, size)
	copy(grown, n.content)
	n.content = grown

	return nil
}

// Create implements vfs.INode.Create. The new child gets a fresh
// never-reused inode id. Creating a name that already exists replaces
// the existing entry.
func (n *Inode) Create(name string, typ vfs.FileType, perms uint16) (vfs.INode, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.meta.Type != vfs.TypeDirectory {
		return nil, vfs.ErrNotDirectory
	}

	child := &Inode{
		parent:   n,
		children: make(map[string]*Inode),
		meta: vfs.Metadata{
			Inode:       nextInodeID(),
			Type:        typ,
			Permissions: perms,
			Links:       1,
		},
		fs: n.fs,
	}

	n.children[name] = child
	return child, nil
}

// Link implements vfs.INode.Link. Hard links are rejected for
// directories and for nodes of a different backend.
func (n *Inode) Link(name string, other vfs.INode) error {
	o, ok := other.(*Inode)
	if !ok {
		return vfs.ErrNotSameFileSystem
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.meta.Type != vfs.TypeDirectory {
		return vfs.ErrNotDirectory
	}

	// The receiver is a directory at this point, so linking it under
	// itself is caught before taking the same lock twice.
	if o == n {
		return vfs.ErrIsDirectory
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.meta.Type == vfs.TypeDirectory {
		return vfs.ErrIsDirectory
	}

	if _, exists := n.children[name]; exists {
		return vfs.ErrEntryExists
	}

	n.children[name] = o
	o.meta.Links++

	return nil
}

// Unlink implements vfs.INode.Unlink. Removing "." or ".." is rejected,
// as is removing a directory that still has children.
func (n *Inode) Unlink(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.meta.Type != vfs.TypeDirectory {
		return vfs.ErrNotDirectory
	}

	if name == "." || name == ".." {
		return vfs.ErrDirectoryNotEmpty
	}

	child, ok := n.children[name]
	if !ok {
		return vfs.ErrEntryNotFound
	}

	child.mu.Lock()
	if len(child.children) > 0 {
		child.mu.Unlock()
		return vfs.ErrDirectoryNotEmpty
	}
	child.meta.Links--
	child.mu.Unlock()

	delete(n.children, name)
	return nil
}

// Move implements vfs.INode.Move as link-then-unlink with rollback: the
// entry is linked at the new location first, and if removing the old
// name then fails, the new link is undone and the original error
// surfaced. The tree never loses the entry; at worst it is transiently
// visible in both places.
func (n *Inode) Move(oldName string, target vfs.INode, newName string) error {
	node, err := n.Find(oldName)
	if err != nil {
		return err
	}

	if err := target.Link(newName, node); err != nil {
		return err
	}

	if err := n.Unlink(oldName); err != nil {
		if uerr := target.Unlink(newName); uerr != nil {
			return uerr
		}
		return err
	}

	return nil
}

// Find implements vfs.INode.Find. "." is the inode itself and ".." its
// parent; the root's parent is the root.
func (n *Inode) Find(name string) (vfs.INode, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.meta.Type != vfs.TypeDirectory {
		return nil, vfs.ErrNotDirectory
	}

	switch name {
	case ".":
		return n, nil
	case "..":
		return n.parent, nil
	default:
		child, ok := n.children[name]
		if !ok {
			return nil, vfs.ErrEntryNotFound
		}
		return child, nil
	}
}

// GetEntry implements vfs.INode.GetEntry. Entries 0 and 1 are "." and
// ".."; the rest follow in sorted name order so iteration is stable.
func (n *Inode) GetEntry(i int) (string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.meta.Type != vfs.TypeDirectory {
		return "", vfs.ErrNotDirectory
	}

	switch i {
	case 0:
		return ".", nil
	case 1:
		return "..", nil
	}

	if i < 0 || i-2 >= len(n.children) {
		return "", vfs.ErrEntryNotFound
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	return names[i-2], nil
}

// FileSystem implements vfs.INode.FileSystem.
func (n *Inode) FileSystem() vfs.FileSystem {
	return n.fs
}
