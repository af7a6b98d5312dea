package replacer

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ratlabs/ratl/pkg/logger"
)

type Outcome int

const (
	// Success: the target is now a hard link to the source inode.
	Success Outcome = iota
	// Transient: the attempt failed but the filesystem is in a known-good
	// state; the target still holds its original data.
	Transient
	// Catastrophic: the target was renamed aside, the new link failed, and
	// restoring the original also failed. The saved copy still holds the
	// data; a diagnostic names it.
	Catastrophic
)

type Replacer struct {
	log     *logrus.Entry
	dryRun  bool
	verbose bool
}

func New(dryRun, verbose bool) *Replacer {
	return &Replacer{
		log:     logger.GetLogger("replacer"),
		dryRun:  dryRun,
		verbose: verbose,
	}
}

// savedName builds the transient path the target is renamed to while the
// new link is created. It lives in the target's directory so the rename
// never crosses a device.
func savedName(to string) string {
	return fmt.Sprintf("%s%04x%04x", to, os.Getpid()&0xffff, time.Now().Unix()&0xffff)
}

// Replace turns the file at to into a hard link to the inode behind from.
// Neither file is ever lost: the target is renamed aside first and only
// unlinked once the new link exists. The window in which the target path
// is absent runs under a raised scheduling priority when possible.
func (r *Replacer) Replace(from, to string) Outcome {
	if r.dryRun {
		fmt.Printf("link %s to %s\n", to, from)
		return Success
	}

	saved := savedName(to)

	restore := raisePriority()
	defer restore()

	if err := os.Rename(to, saved); err != nil {
		r.log.Debugf("Rename %q to %q: %v", to, saved, err)
		return Transient
	}

	if err := os.Link(from, to); err != nil {
		linkErr := err
		if err := os.Rename(saved, to); err != nil {
			r.log.Errorf("failed to link %s to %s - copy has been left on %s", to, from, saved)
			return Catastrophic
		}
		r.log.Debugf("Link %q to %q: %v", from, to, linkErr)
		return Transient
	}

	// this should never fail - we have only just created it
	if err := os.Remove(saved); err != nil {
		r.log.Errorf("cannot remove temporary file %s: %v", saved, err)
	}

	if r.verbose {
		fmt.Printf("linking %s to %s\n", to, from)
	}

	return Success
}
