// Package mountfs provides a mount overlay: a wrapper around an
// arbitrary vfs.FileSystem that lets other filesystems be grafted onto
// any directory inode of it. Lookups crossing a mount boundary
// transparently continue inside the mounted filesystem's root, and ".."
// climbs back out of it.
package mountfs

import (
	"sync"

	vfs "kernvfs/pkg/vfs"
)

// FS wraps an inner filesystem and tracks what is mounted where. The
// mount-point map is keyed by the numeric inode id of one of the inner
// filesystem's directories; the id is the only thing mount logic may
// use to identify an inode.
type FS struct {
	inner vfs.FileSystem

	mu          sync.RWMutex
	mountpoints map[uint64]*FS

	// selfMountpoint is the node this filesystem is mounted under, nil
	// for the top-level mount. ".." at the mount root climbs through it.
	selfMountpoint *Node
}

// New wraps fs as the top-level mount.
func New(fs vfs.FileSystem) *FS {
	return &FS{
		inner:       fs,
		mountpoints: make(map[uint64]*FS),
	}
}

// RootNode returns the root of this mount as a *Node.
func (fs *FS) RootNode() *Node {
	return &Node{inode: fs.inner.Root(), fs: fs}
}

// Sync implements vfs.FileSystem.Sync: the inner filesystem first, then
// every filesystem mounted below it.
func (fs *FS) Sync() error {
	if err := fs.inner.Sync(); err != nil {
		return err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, sub := range fs.mountpoints {
		if err := sub.Sync(); err != nil {
			return err
		}
	}

	return nil
}

// Root implements vfs.FileSystem.Root.
func (fs *FS) Root() vfs.INode {
	return fs.RootNode()
}

// Metadata implements vfs.FileSystem.Metadata.
func (fs *FS) Metadata() vfs.FSMetadata {
	return fs.inner.Metadata()
}

// Node wraps an inner inode together with the mount it was reached
// through. Most operations forward to the inner inode; lookups apply
// overlay resolution so that stepping into a mounted directory lands
// inside the mounted filesystem.
type Node struct {
	inode vfs.INode
	fs    *FS
}

// INode returns the wrapped inner inode.
func (n *Node) INode() vfs.INode {
	return n.inode
}

// Mount grafts fs onto this directory inode and returns the new mount.
func (n *Node) Mount(fs vfs.FileSystem) (*FS, error) {
	meta, err := n.inode.Metadata()
	if err != nil {
		return nil, err
	}

	if meta.Type != vfs.TypeDirectory {
		return nil, vfs.ErrNotDirectory
	}

	mounted := &FS{
		inner:          fs,
		mountpoints:    make(map[uint64]*FS),
		selfMountpoint: n,
	}

	n.fs.mu.Lock()
	n.fs.mountpoints[meta.Inode] = mounted
	n.fs.mu.Unlock()

	return mounted, nil
}

// overlaid returns the root of the filesystem mounted on this node, or
// the node itself when nothing is mounted here.
func (n *Node) overlaid() *Node {
	meta, err := n.inode.Metadata()
	if err != nil {
		return n
	}

	n.fs.mu.RLock()
	sub, ok := n.fs.mountpoints[meta.Inode]
	n.fs.mu.RUnlock()

	if ok {
		return sub.RootNode()
	}

	return n
}

// isRoot reports whether this node is the root of its inner filesystem,
// judged by inode id.
func (n *Node) isRoot() bool {
	rootMeta, err := n.inode.FileSystem().Root().Metadata()
	if err != nil {
		return false
	}

	meta, err := n.inode.Metadata()
	if err != nil {
		return false
	}

	return rootMeta.Inode == meta.Inode
}

// CreateNode creates a child through the inner inode and wraps it in
// this mount.
func (n *Node) CreateNode(name string, typ vfs.FileType, perms uint16) (*Node, error) {
	inode, err := n.inode.Create(name, typ, perms)
	if err != nil {
		return nil, err
	}

	return &Node{inode: inode, fs: n.fs}, nil
}

// FindNode looks up a child and applies overlay resolution. "." returns
// the node itself. ".." at the root of a mounted filesystem delegates
// to the node the mount hangs under, climbing out of the mount; at the
// top-level root it stays put. Neither "." nor ".." results are
// overlay-resolved.
func (n *Node) FindNode(name string) (*Node, error) {
	meta, err := n.inode.Metadata()
	if err != nil {
		return nil, err
	}

	if meta.Type != vfs.TypeDirectory {
		return nil, vfs.ErrNotDirectory
	}

	switch name {
	case ".":
		return n, nil

	case "..":
		if n.isRoot() {
			if n.fs.selfMountpoint != nil {
				return n.fs.selfMountpoint.FindNode("..")
			}
			return n, nil
		}

		inode, err := n.inode.Find(name)
		if err != nil {
			return nil, err
		}
		return &Node{inode: inode, fs: n.fs}, nil

	default:
		// Lookups on a mount point search the mounted root, and a found
		// mount point is substituted by what is mounted on it.
		base := n.overlaid()

		inode, err := base.inode.Find(name)
		if err != nil {
			return nil, err
		}

		found := &Node{inode: inode, fs: base.fs}
		return found.overlaid(), nil
	}
}

// ReadAt implements vfs.INode.ReadAt.
func (n *Node) ReadAt(p []byte, off int64) (int, error) {
	return n.inode.ReadAt(p, off)
}

// WriteAt implements vfs.INode.WriteAt.
func (n *Node) WriteAt(p []byte, off int64) (int, error) {
	return n.inode.WriteAt(p, off)
}

// Metadata implements vfs.INode.Metadata.
func (n *Node) Metadata() (vfs.Metadata, error) {
	return n.inode.Metadata()
}

// SetMetadata implements vfs.INode.SetMetadata.
func (n *Node) SetMetadata(meta vfs.Metadata) error {
	return n.inode.SetMetadata(meta)
}

// SyncAll implements vfs.INode.SyncAll.
func (n *Node) SyncAll() error {
	return n.inode.SyncAll()
}

// SyncData implements vfs.INode.SyncData.
func (n *Node) SyncData() error {
	return n.inode.SyncData()
}

// Resize implements vfs.INode.Resize.
func (n *Node) Resize(size int64) error {
	return n.inode.Resize(size)
}

// Create implements vfs.INode.Create.
func (n *Node) Create(name string, typ vfs.FileType, perms uint16) (vfs.INode, error) {
	return n.CreateNode(name, typ, perms)
}

// Link implements vfs.INode.Link. The other node must belong to a mount
// as well; the link itself happens between the inner inodes.
func (n *Node) Link(name string, other vfs.INode) error {
	o, ok := other.(*Node)
	if !ok {
		return vfs.ErrNotSameFileSystem
	}

	return n.inode.Link(name, o.inode)
}

// Unlink implements vfs.INode.Unlink. An entry that currently has a
// filesystem mounted on it is pinned: it must be structurally
// unmounted before the underlying name can go away, so the unlink
// fails with ErrBusy instead of silently detaching the mount.
func (n *Node) Unlink(name string) error {
	child, err := n.inode.Find(name)
	if err != nil {
		return err
	}

	meta, err := child.Metadata()
	if err != nil {
		return err
	}

	n.fs.mu.RLock()
	_, mounted := n.fs.mountpoints[meta.Inode]
	n.fs.mu.RUnlock()

	if mounted {
		return vfs.ErrBusy
	}

	return n.inode.Unlink(name)
}

// Move implements vfs.INode.Move.
func (n *Node) Move(oldName string, target vfs.INode, newName string) error {
	t, ok := target.(*Node)
	if !ok {
		return vfs.ErrNotSameFileSystem
	}

	return n.inode.Move(oldName, t.inode, newName)
}

// Find implements vfs.INode.Find.
func (n *Node) Find(name string) (vfs.INode, error) {
	return n.FindNode(name)
}

// GetEntry implements vfs.INode.GetEntry.
func (n *Node) GetEntry(i int) (string, error) {
	return n.inode.GetEntry(i)
}

// FileSystem implements vfs.INode.FileSystem.
func (n *Node) FileSystem() vfs.FileSystem {
	return n.fs
}
