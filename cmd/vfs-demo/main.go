// VFS Demo - Walks the filesystem core through a boot-like sequence.
//
// The program builds the tree the kernel assembles at startup: a
// ramdisk root wrapped in a mount overlay, a second ramdisk mounted at
// /tmp, and a device filesystem with null/zero devices mounted at /dev.
// It then exercises file I/O, hard links, listing, and path resolution
// across the mount boundaries.
package main

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"kernvfs/pkg/console"
	vfs "kernvfs/pkg/vfs"
	"kernvfs/pkg/vfs/devfs"
	"kernvfs/pkg/vfs/mountfs"
	"kernvfs/pkg/vfs/ramdisk"
)

// Settings are the demo's environment-driven knobs.
type Settings struct {
	// FollowLimit bounds symbolic-link expansion during path resolution.
	FollowLimit int `envconfig:"FOLLOW_LIMIT" default:"8"`

	// Debug enables debug-level console output.
	Debug bool `envconfig:"DEBUG" default:"false"`
}

func main() {
	var settings Settings
	if err := envconfig.Process("VFS", &settings); err != nil {
		panic(err)
	}

	log, err := console.New(settings.Debug)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Top-level mount over the primary ramdisk. Failure below is fatal:
	// this is pre-scheduler bring-up code.
	rootFS := mountfs.New(ramdisk.New())
	root := rootFS.RootNode()

	log.Info("filesystem core up",
		zap.Int("follow_limit", settings.FollowLimit))

	setupRamdisk(log, root)
	setupDevFS(log, root)
	setupMounts(log, root, settings.FollowLimit)
	resolveSymlinks(log, root, settings.FollowLimit)
}

// setupRamdisk creates and reads back a plain file in the root ramdisk.
func setupRamdisk(log *zap.Logger, root *mountfs.Node) {
	file, err := root.CreateNode("hello.txt", vfs.TypeFile, 0o777)
	if err != nil {
		log.Fatal("create failed", zap.Error(err))
	}

	content := []byte("This is a file!")
	if _, err := file.WriteAt(content, 0); err != nil {
		log.Fatal("write failed", zap.Error(err))
	}

	buf := make([]byte, 20)
	n, err := file.ReadAt(buf, 0)
	if err != nil {
		log.Fatal("read failed", zap.Error(err))
	}

	log.Info("file round trip", zap.ByteString("content", buf[:n]))

	// The same inode under a second name.
	if err := root.Link("hello-again.txt", file); err != nil {
		log.Fatal("link failed", zap.Error(err))
	}

	names, err := vfs.List(root)
	if err != nil {
		log.Fatal("list failed", zap.Error(err))
	}

	log.Info("root listing", zap.Strings("entries", names))
}

// setupDevFS registers null and zero devices and mounts the registry at
// /dev.
func setupDevFS(log *zap.Logger, root *mountfs.Node) {
	devices := devfs.New()

	if err := devices.Add("null", devfs.NewNull(devices)); err != nil {
		log.Fatal("register null failed", zap.Error(err))
	}
	if err := devices.Add("zero", devfs.NewZero(devices)); err != nil {
		log.Fatal("register zero failed", zap.Error(err))
	}

	dev, err := root.CreateNode("dev", vfs.TypeDirectory, 0o777)
	if err != nil {
		log.Fatal("create /dev failed", zap.Error(err))
	}

	if _, err := dev.Mount(devices); err != nil {
		log.Fatal("mount /dev failed", zap.Error(err))
	}

	zero, err := vfs.Resolve(root, "/dev/zero", 0)
	if err != nil {
		log.Fatal("resolve /dev/zero failed", zap.Error(err))
	}

	buf := []byte{0xff, 0xff, 0xff, 0xff}
	n, err := zero.ReadAt(buf, 0)
	if err != nil {
		log.Fatal("read /dev/zero failed", zap.Error(err))
	}

	log.Info("read from zero device", zap.Int("bytes", n), zap.Binary("buf", buf))
}

// setupMounts grafts a second ramdisk onto /tmp and resolves a path
// across the mount boundary.
func setupMounts(log *zap.Logger, root *mountfs.Node, follow int) {
	scratch := ramdisk.New()

	folder, err := scratch.Root().Create("folder", vfs.TypeDirectory, 0o777)
	if err != nil {
		log.Fatal("create folder failed", zap.Error(err))
	}

	nested, err := folder.Create("nested.txt", vfs.TypeFile, 0o666)
	if err != nil {
		log.Fatal("create nested failed", zap.Error(err))
	}

	if _, err := nested.WriteAt([]byte("across the mount"), 0); err != nil {
		log.Fatal("write nested failed", zap.Error(err))
	}

	tmp, err := root.CreateNode("tmp", vfs.TypeDirectory, 0o777)
	if err != nil {
		log.Fatal("create /tmp failed", zap.Error(err))
	}

	if _, err := tmp.Mount(scratch); err != nil {
		log.Fatal("mount /tmp failed", zap.Error(err))
	}

	node, err := vfs.Resolve(root, "tmp/folder/nested.txt", follow)
	if err != nil {
		log.Fatal("cross-mount resolve failed", zap.Error(err))
	}

	file := vfs.NewFile(node)
	defer file.Close()

	buf := make([]byte, 32)
	n, _ := file.Read(buf)
	log.Info("cross-mount read", zap.ByteString("content", buf[:n]))

	// The mounted entry is pinned until unmounted.
	if err := root.Unlink("tmp"); err != nil {
		log.Info("unlink of mount point rejected", zap.Error(err))
	}
}

// resolveSymlinks demonstrates bounded symbolic-link following.
func resolveSymlinks(log *zap.Logger, root *mountfs.Node, follow int) {
	link, err := root.CreateNode("link", vfs.TypeSymbolicLink, 0o777)
	if err != nil {
		log.Fatal("create symlink failed", zap.Error(err))
	}

	if _, err := link.WriteAt([]byte("tmp/folder"), 0); err != nil {
		log.Fatal("write symlink failed", zap.Error(err))
	}

	node, err := vfs.Resolve(root, "link/nested.txt", follow)
	if err != nil {
		log.Fatal("symlink resolve failed", zap.Error(err))
	}

	meta, err := node.Metadata()
	if err != nil {
		log.Fatal("metadata failed", zap.Error(err))
	}

	log.Info("resolved through symlink",
		zap.Uint64("inode", meta.Inode),
		zap.Int64("size", meta.Size),
		zap.Stringer("type", meta.Type))
}
