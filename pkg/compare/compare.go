package compare

import (
	"os"

	"github.com/hlubek/readercomp"

	"github.com/ratlabs/ratl/pkg/logger"
)

type Result int

const (
	Equal Result = iota
	Differ
	Unreadable
)

func (r Result) String() string {
	switch r {
	case Equal:
		return "equal"
	case Differ:
		return "differ"
	default:
		return "unreadable"
	}
}

// bufferSize is the fixed read size for the lock-step comparison.
const bufferSize = 8192

var log = logger.GetLogger("compare")

// Files byte-compares two paths. Size equality is the caller's class
// precondition, not a shortcut taken here: the contents are always read in
// lock-step until they diverge or both hit EOF, so files that changed size
// since they were last stat'd still compare correctly.
func Files(a, b string) Result {
	fa, err := os.Open(a)
	if err != nil {
		log.Tracef("Open %q: %v", a, err)
		return Unreadable
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		log.Tracef("Open %q: %v", b, err)
		return Unreadable
	}
	defer fb.Close()

	equal, err := readercomp.Equal(fa, fb, bufferSize)
	if err != nil {
		log.Tracef("Compare %q with %q: %v", a, b, err)
		return Unreadable
	}

	if equal {
		return Equal
	}
	return Differ
}
