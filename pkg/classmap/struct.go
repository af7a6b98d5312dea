package classmap

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// FileRecord describes one regular-file candidate.
type FileRecord struct {
	Name  string // full path used for syscalls
	Dir   string // originating directory, informational
	Inode uint64
	Nlink uint64
}

// ClassKey is the cheap-metadata tuple used to partition candidates before
// any content comparison.
type ClassKey struct {
	Size   int64
	Device uint64
	UID    uint32
	GID    uint32
	Perms  uint32
}

// String returns a string representation of the ClassKey.
func (k ClassKey) String() string {
	return fmt.Sprintf("%d@%d %d:%d %04o", k.Size, k.Device, k.UID, k.GID, k.Perms)
}

// Class is one equivalence class: files agreeing on every active key
// component. Membership is necessary but not sufficient for identity.
type Class struct {
	ClassKey
	Members []*FileRecord
}

// IgnoreFlags masks individual key components out of class matching.
// Size and device always participate; hard links cannot cross devices.
type IgnoreFlags struct {
	Owner bool
	Group bool
	Perms bool
}

type ClassMap struct {
	classes []*Class
	ignore  IgnoreFlags
	log     *logrus.Entry
}
