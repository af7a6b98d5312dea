package probe

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ratlabs/ratl/pkg/classmap"
	"github.com/ratlabs/ratl/pkg/logger"
	"github.com/ratlabs/ratl/pkg/paths"
)

type Kind int

const (
	// Missing covers everything the engine skips silently: absent paths,
	// special files, unfollowed symlinks and stat failures.
	Missing Kind = iota
	Dir
	File
)

type Options struct {
	FollowSymlinks bool
	IgnoreEmpty    bool
}

type Result struct {
	Kind   Kind
	Path   string
	Record *classmap.FileRecord
	Key    classmap.ClassKey
}

type Prober struct {
	opts Options
	log  *logrus.Entry
}

func New(opts Options) *Prober {
	return &Prober{
		opts: opts,
		log:  logger.GetLogger("probe"),
	}
}

// Probe stats a candidate without following symlinks and classifies it.
// Symlinks are resolved one level when FollowSymlinks is on: a link to a
// directory classifies as Dir, a link to a regular file proceeds, anything
// else is Missing.
func (p *Prober) Probe(filename, directory string) Result {
	path := paths.Join(directory, filename)

	fi, err := os.Lstat(path)
	if err != nil {
		p.log.Tracef("Lstat %q: %v", path, err)
		return Result{Kind: Missing, Path: path}
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		if !p.opts.FollowSymlinks {
			return Result{Kind: Missing, Path: path}
		}
		if fi, err = os.Stat(path); err != nil {
			p.log.Tracef("Stat %q: %v", path, err)
			return Result{Kind: Missing, Path: path}
		}
	}

	switch {
	case fi.IsDir():
		return Result{Kind: Dir, Path: path}
	case !fi.Mode().IsRegular():
		return Result{Kind: Missing, Path: path}
	}

	if p.opts.IgnoreEmpty && fi.Size() == 0 {
		return Result{Kind: Missing, Path: path}
	}

	st, ok := statInfo(path, fi)
	if !ok {
		return Result{Kind: Missing, Path: path}
	}

	return Result{
		Kind: File,
		Path: path,
		Record: &classmap.FileRecord{
			Name:  path,
			Dir:   directory,
			Inode: st.Inode,
			Nlink: st.Nlink,
		},
		Key: classmap.ClassKey{
			Size:   fi.Size(),
			Device: st.Device,
			UID:    st.UID,
			GID:    st.GID,
			Perms:  st.Perms,
		},
	}
}

// ID returns a device:inode identifier for path, following symlinks.
func ID(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(err, "stat")
	}

	st, ok := statInfo(path, fi)
	if !ok {
		return "", errors.Errorf("no system stat info for %q", path)
	}

	return fmt.Sprintf("%d:%d", st.Device, st.Inode), nil
}

// sysInfo carries the stat fields the engine keys and links on.
type sysInfo struct {
	Device uint64
	Inode  uint64
	Nlink  uint64
	UID    uint32
	GID    uint32
	Perms  uint32
}
