//go:build !windows

package probe

import (
	"io/fs"
	"syscall"
)

// statInfo extracts device, inode, link count and ownership from a
// FileInfo on Unix. Returns ok=false if syscall.Stat_t is not available.
func statInfo(_ string, fi fs.FileInfo) (sysInfo, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return sysInfo{}, false
	}

	return sysInfo{
		Device: uint64(st.Dev),
		Inode:  uint64(st.Ino),
		Nlink:  uint64(st.Nlink),
		UID:    st.Uid,
		GID:    st.Gid,
		Perms:  uint32(st.Mode) & 0o7777,
	}, true
}
