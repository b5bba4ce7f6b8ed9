package vfs

import "errors"

// The closed set of errors a filesystem operation may return. Callers
// are expected to handle every one of these explicitly; backends do not
// wrap them, so errors.Is comparisons reduce to identity.
var (
	// ErrUnsupported is returned when a backend does not implement an operation.
	ErrUnsupported = errors.New("vfs: unsupported operation")

	// ErrNotFile is returned when a file-only operation is invoked on a non-file.
	ErrNotFile = errors.New("vfs: not a file")

	// ErrNotDirectory is returned when a directory-only operation is invoked
	// on a non-directory.
	ErrNotDirectory = errors.New("vfs: not a directory")

	// ErrIsDirectory is returned when byte-level I/O is attempted on a directory.
	ErrIsDirectory = errors.New("vfs: is a directory")

	// ErrEntryNotFound is returned when a name or entry index does not exist.
	ErrEntryNotFound = errors.New("vfs: entry not found")

	// ErrEntryExists is returned when a name is already taken.
	ErrEntryExists = errors.New("vfs: entry exists")

	// ErrNotSameFileSystem is returned when an operation would cross between
	// backends with no shared representation.
	ErrNotSameFileSystem = errors.New("vfs: not same filesystem")

	// ErrDirectoryNotEmpty is returned when removing a directory that still
	// has children.
	ErrDirectoryNotEmpty = errors.New("vfs: directory not empty")

	// ErrBusy is returned when an inode is pinned by a mount and cannot be
	// detached.
	ErrBusy = errors.New("vfs: busy")
)

// Errors local to the File cursor, outside the backend taxonomy.
var (
	// ErrClosedFile is returned when operations are performed on a closed file.
	ErrClosedFile = errors.New("vfs: file is closed")

	// ErrInvalidSeek is returned for an invalid seek operation.
	ErrInvalidSeek = errors.New("vfs: invalid seek")
)
