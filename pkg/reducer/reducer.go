package reducer

import (
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/ratlabs/ratl/pkg/classmap"
	"github.com/ratlabs/ratl/pkg/compare"
	"github.com/ratlabs/ratl/pkg/logger"
	"github.com/ratlabs/ratl/pkg/replacer"
)

// LinkedPair records one coalesced target/source pair for the run summary.
type LinkedPair struct {
	Target string
	Source string
	Size   int64
}

type Stats struct {
	Classes        int
	Candidates     int
	Compared       int
	Links          int
	AlreadyLinked  int
	Transient      int
	Catastrophic   int
	ReclaimedBytes uint64
	Linked         []LinkedPair
}

type Reducer struct {
	log     *logrus.Entry
	rep     *replacer.Replacer
	limiter ratelimit.Limiter
}

func New(rep *replacer.Replacer, limiter ratelimit.Limiter) *Reducer {
	return &Reducer{
		log:     logger.GetLogger("reducer"),
		rep:     rep,
		limiter: limiter,
	}
}

// Reduce collapses every class in the map and returns the run statistics.
func (r *Reducer) Reduce(m *classmap.ClassMap) Stats {
	st := Stats{}

	for _, c := range m.Classes() {
		st.Classes++
		st.Candidates += len(c.Members)
		r.combine(c, &st)
	}

	return st
}

// combine performs the pairwise reduction of one class: take the head as
// pivot, walk the rest, drop every member coalesced with the pivot and
// keep the others in their original relative order, then repeat with the
// next survivor until fewer than two members remain.
func (r *Reducer) combine(c *classmap.Class, st *Stats) {
	members := c.Members

	for len(members) >= 2 {
		pivot := members[0]
		rest := members[1:]

		kept := make([]*classmap.FileRecord, 0, len(rest))
		for _, m := range rest {
			if r.tryLink(pivot, m, c, st) {
				continue
			}
			kept = append(kept, m)
		}

		members = kept
	}
}

// tryLink attempts to coalesce b with a. It reports true when the pair is
// settled for this run: already sharing an inode, freshly linked, or a
// replacement failure that further attempts would only repeat. False means
// the contents differ (or could not be read) and b stays in the class.
func (r *Reducer) tryLink(a, b *classmap.FileRecord, c *classmap.Class, st *Stats) bool {
	if a.Inode == b.Inode {
		st.AlreadyLinked++
		return true
	}

	st.Compared++
	if res := compare.Files(a.Name, b.Name); res != compare.Equal {
		r.log.Tracef("Compared %q with %q: %s", a.Name, b.Name, res)
		return false
	}

	// Replace the side with the lower link count so the more widely
	// shared inode survives. Ties keep the pivot as source.
	from, to := a, b
	if b.Nlink > a.Nlink {
		from, to = b, a
	}

	r.limiter.Take()

	switch r.rep.Replace(from.Name, to.Name) {
	case replacer.Success:
		r.recordLink(from, to, c, st)
		return true
	case replacer.Catastrophic:
		st.Catastrophic++
		return true
	}

	// Could not replace in that direction; try the other. The result is
	// irrelevant either way: repeating the pair later in this run would
	// only fail again.
	switch r.rep.Replace(to.Name, from.Name) {
	case replacer.Success:
		r.recordLink(to, from, c, st)
	case replacer.Catastrophic:
		st.Catastrophic++
	default:
		st.Transient++
	}

	return true
}

func (r *Reducer) recordLink(from, to *classmap.FileRecord, c *classmap.Class, st *Stats) {
	st.Links++
	if to.Nlink == 1 {
		// the replaced path held the last reference to its inode
		st.ReclaimedBytes += uint64(c.Size)
	}
	st.Linked = append(st.Linked, LinkedPair{Target: to.Name, Source: from.Name, Size: c.Size})

	// Both paths now reference the surviving inode. Keeping the records
	// current lets later pairs short-circuit on inode equality.
	from.Nlink++
	to.Inode = from.Inode
	to.Nlink = from.Nlink
}
