//go:build windows

package probe

import (
	"io/fs"
	"syscall"
)

// statInfo extracts the file identity on Windows. The volume serial number
// and file index stand in for device and inode; there is no uid/gid, so
// ownership components stay zero and only the permission bits survive.
func statInfo(path string, fi fs.FileInfo) (sysInfo, bool) {
	pathp, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return sysInfo{}, false
	}

	h, err := syscall.CreateFile(pathp, 0, 0, nil, syscall.OPEN_EXISTING,
		syscall.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return sysInfo{}, false
	}
	defer syscall.CloseHandle(h)

	var info syscall.ByHandleFileInformation
	if err := syscall.GetFileInformationByHandle(h, &info); err != nil {
		return sysInfo{}, false
	}

	return sysInfo{
		Device: uint64(info.VolumeSerialNumber),
		Inode:  (uint64(info.FileIndexHigh) << 32) | uint64(info.FileIndexLow),
		Nlink:  uint64(info.NumberOfLinks),
		Perms:  uint32(fi.Mode().Perm()),
	}, true
}
