package vfs

// INode is the capability contract for one filesystem object: a file,
// directory, symbolic link, or character device. Handles are shared;
// operations are dispatched dynamically to the concrete backend.
//
// Directory-only operations (Create, Link, Unlink, Move, Find, GetEntry)
// fail with ErrNotDirectory when invoked on a non-directory. Byte-level
// I/O on a directory fails with ErrIsDirectory.
type INode interface {
	// ReadAt reads bytes at offset off into p and returns the number of
	// bytes read. Reads are clamped to the content length; reading past
	// the end returns 0 without error.
	ReadAt(p []byte, off int64) (int, error)

	// WriteAt writes bytes from p at offset off and returns the number
	// of bytes written. Writing past the current length grows the
	// content, zero-filling the gap.
	WriteAt(p []byte, off int64) (int, error)

	// Metadata returns the metadata of the inode.
	Metadata() (Metadata, error)

	// SetMetadata updates the mutable metadata fields: the three
	// timestamps, permissions, and owner/group ids. Type, id, size, and
	// link count are backend-controlled and ignored.
	SetMetadata(meta Metadata) error

	// SyncAll flushes data and metadata to the backing store.
	SyncAll() error

	// SyncData flushes only data to the backing store.
	SyncData() error

	// Resize changes the file content to n bytes, zero-filling when
	// growing. Fails with ErrNotFile on non-files.
	Resize(n int64) error

	// Create makes a new child object under this directory and returns it.
	Create(name string, typ FileType, perms uint16) (INode, error)

	// Link inserts other under name in this directory as a hard link.
	// Directories cannot be hard-linked.
	Link(name string, other INode) error

	// Unlink removes the name from this directory and decrements the
	// target's link count.
	Unlink(name string) error

	// Move transfers this directory's entry oldName to target under
	// newName. Passing the receiver as target renames in place.
	Move(oldName string, target INode, newName string) error

	// Find returns the child with the given name. "." is the inode
	// itself and ".." its parent.
	Find(name string) (INode, error)

	// GetEntry returns the name of the i'th directory entry. Entries 0
	// and 1 are always "." and "..". Fails with ErrEntryNotFound past
	// the last entry.
	GetEntry(i int) (string, error)

	// FileSystem returns the filesystem this inode belongs to.
	FileSystem() FileSystem
}

// FileSystem owns a root inode and reports aggregate metadata. A
// filesystem instance is shared by every inode it spawns and stays
// alive for as long as any of them does.
type FileSystem interface {
	// Sync flushes everything in this filesystem.
	Sync() error

	// Root returns the root inode of this filesystem.
	Root() INode

	// Metadata returns the aggregate metadata of the filesystem.
	Metadata() FSMetadata
}

// FileType tags the kind of object an inode represents.
type FileType uint8

// The inode object kinds.
const (
	TypeFile FileType = iota
	TypeDirectory
	TypeSymbolicLink
	TypeCharDevice
)

// String returns a human-readable name for the file type.
func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	case TypeSymbolicLink:
		return "symlink"
	case TypeCharDevice:
		return "chardev"
	default:
		return "unknown"
	}
}

// Timespec is a timestamp in seconds and nanoseconds.
type Timespec struct {
	Sec     int64
	Nanosec int32
}

// Metadata is the common metadata every inode provides.
type Metadata struct {
	// Inode is the numeric id, unique within one filesystem instance and
	// stable for the object's lifetime. Mount and backend logic may use
	// it, and only it, to identify an inode.
	Inode uint64

	// Size in bytes. For directories the meaning is backend-defined.
	Size int64

	// AccessTime is the last access time.
	AccessTime Timespec

	// ModificationTime is the last content modification time.
	ModificationTime Timespec

	// ChangeTime is the last metadata change time.
	ChangeTime Timespec

	// Type of the object.
	Type FileType

	// Permissions bit-mask. Stored, not enforced.
	Permissions uint16

	// Links is the number of hard links to the object.
	Links int

	// UID is the owner user id.
	UID int

	// GID is the owner group id.
	GID int
}

// FSMetadata is the aggregate metadata every filesystem provides. The
// values are advisory only and not enforced.
type FSMetadata struct {
	// Files is the total number of inode ids on this filesystem.
	Files int

	// FilesFree is the number of free inode ids on this filesystem.
	FilesFree int

	// MaxNameLen is the maximum filename length.
	MaxNameLen int
}

// List returns the names of all entries of the directory inode,
// including "." and "..", by iterating GetEntry until it reports
// ErrEntryNotFound.
func List(n INode) ([]string, error) {
	meta, err := n.Metadata()
	if err != nil {
		return nil, err
	}

	if meta.Type != TypeDirectory {
		return nil, ErrNotDirectory
	}

	var names []string
	for i := 0; ; i++ {
		name, err := n.GetEntry(i)
		if err != nil {
			break
		}
		names = append(names, name)
	}

	return names, nil
}
