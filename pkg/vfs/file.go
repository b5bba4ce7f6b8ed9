package vfs

import (
	"io"
	"sync"
)

// File is an offset cursor over an INode, giving inode-style offset I/O
// the familiar io.Reader, io.Writer, and io.Seeker shape. It is the
// descriptor-level view kernel code hands out; the underlying inode
// keeps its own locking, the cursor only guards its offset.
type File struct {
	mu     sync.Mutex
	node   INode
	offset int64
	closed bool
}

// NewFile returns a file cursor positioned at the start of the inode.
func NewFile(n INode) *File {
	return &File{node: n}
}

// Read implements the io.Reader interface. Reading at or past the end
// of the content returns io.EOF.
func (f *File) Read(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrClosedFile
	}

	if len(b) == 0 {
		return 0, nil
	}

	n, err := f.node.ReadAt(b, f.offset)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, io.EOF
	}

	f.offset += int64(n)
	return n, nil
}

// Write implements the io.Writer interface.
func (f *File) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrClosedFile
	}

	n, err := f.node.WriteAt(b, f.offset)
	if err != nil {
		return 0, err
	}

	f.offset += int64(n)
	return n, nil
}

// Seek implements the io.Seeker interface. Seeking relative to the end
// uses the inode's current size.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrClosedFile
	}

	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = f.offset + offset
	case io.SeekEnd:
		meta, err := f.node.Metadata()
		if err != nil {
			return 0, err
		}
		newOffset = meta.Size + offset
	default:
		return 0, ErrInvalidSeek
	}

	if newOffset < 0 {
		return 0, ErrInvalidSeek
	}

	f.offset = newOffset
	return f.offset, nil
}

// Close implements the io.Closer interface. Closing an already closed
// file is a no-op.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

// Metadata returns the metadata of the underlying inode.
func (f *File) Metadata() (Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return Metadata{}, ErrClosedFile
	}

	return f.node.Metadata()
}

// Sync flushes the underlying inode's data and metadata.
func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosedFile
	}

	return f.node.SyncAll()
}

// INode returns the inode the cursor wraps.
func (f *File) INode() INode {
	return f.node
}
