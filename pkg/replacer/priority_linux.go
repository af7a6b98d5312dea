//go:build linux

package replacer

import (
	"os"

	"golang.org/x/sys/unix"
)

// raisedNice is the nice value used inside the critical section.
const raisedNice = -10

// raisePriority bumps the process priority for the rename-aside window and
// returns a function restoring the previous value. Best-effort and only
// attempted when running as the superuser; callers never see an error.
func raisePriority() func() {
	if os.Geteuid() != 0 {
		return func() {}
	}

	prio, err := unix.Getpriority(unix.PRIO_PROCESS, 0)
	if err != nil {
		return func() {}
	}
	// the raw getpriority syscall reports 20-nice
	prev := 20 - prio

	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, raisedNice); err != nil {
		return func() {}
	}

	return func() {
		_ = unix.Setpriority(unix.PRIO_PROCESS, 0, prev)
	}
}
