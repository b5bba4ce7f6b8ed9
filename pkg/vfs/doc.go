// Package vfs provides the Virtual File System (VFS) abstraction layer
// used by the kernel: a uniform tree of named inode objects served by
// heterogeneous storage backends.
//
// The core of the package is the INode interface, a capability contract
// every backend implements, and the FileSystem interface, which owns a
// root inode and reports aggregate metadata. Backends live in
// subpackages:
//
//   - ramdisk: a tree-structured, heap-resident filesystem
//   - devfs: a flat name registry for device special files
//   - mountfs: an overlay that grafts filesystems onto directory inodes
//
// Path resolution (Resolve) is built purely in terms of the Find
// contract, so it works unmodified across all backends, including
// lookups that cross a mount boundary.
//
// # Usage
//
// To use a backend, create an instance and address it through its root
// inode:
//
//	fs := ramdisk.New()
//	root := fs.Root()
//	file, err := root.Create("hello.txt", vfs.TypeFile, 0o644)
//	if err != nil {
//		log.Fatal(err)
//	}
//	file.WriteAt([]byte("hello"), 0)
package vfs
