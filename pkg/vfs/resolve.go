package vfs

import (
	"strings"
	"unicode/utf8"
)

// symlinkBufSize bounds how much of a symbolic link's content the
// resolver reads. Targets longer than this are truncated; the limit is
// documented rather than removed to keep resolution allocation-bounded.
const symlinkBufSize = 256

// Resolve walks a slash-delimited path starting from the given inode and
// returns the inode it names. A leading or embedded "/" resets the walk
// to the root of the starting inode's filesystem. Symbolic links are
// expanded at most follow times; once the budget is exhausted a link is
// returned (or descended into) as a plain object. This bounds symlink
// cycles without any loop detection state.
func Resolve(start INode, path string, follow int) (INode, error) {
	// Normalizes the start so a non-directory fails up front.
	current, err := start.Find(".")
	if err != nil {
		return nil, err
	}

	rest := path
	for rest != "" {
		meta, err := current.Metadata()
		if err != nil {
			return nil, err
		}

		if meta.Type != TypeDirectory {
			return nil, ErrNotDirectory
		}

		if rest[0] == '/' {
			current = start.FileSystem().Root()
			rest = rest[1:]
			continue
		}

		var next string
		if pos := strings.IndexByte(rest, '/'); pos < 0 {
			next, rest = rest, ""
		} else {
			next, rest = rest[:pos], rest[pos+1:]
		}

		node, err := current.Find(next)
		if err != nil {
			return nil, err
		}

		nodeMeta, err := node.Metadata()
		if err != nil {
			return nil, err
		}

		if nodeMeta.Type == TypeSymbolicLink && follow > 0 {
			follow--

			buf := make([]byte, symlinkBufSize)
			n, err := node.ReadAt(buf, 0)
			if err != nil {
				return nil, err
			}

			target := buf[:n]
			if !utf8.Valid(target) {
				return nil, ErrNotDirectory
			}

			// Splice the link target in place of the consumed component.
			spliced := string(target)
			if !strings.HasSuffix(spliced, "/") {
				spliced += "/"
			}

			rest = spliced + rest
		} else {
			current = node
		}
	}

	return current, nil
}
