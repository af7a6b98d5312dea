package scanner

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charlievieth/fastwalk"
	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/sirupsen/logrus"

	"github.com/ratlabs/ratl/pkg/classmap"
	"github.com/ratlabs/ratl/pkg/expression"
	"github.com/ratlabs/ratl/pkg/logger"
	"github.com/ratlabs/ratl/pkg/paths"
	"github.com/ratlabs/ratl/pkg/probe"
)

// maxLineLen bounds one list-file line; longer lines are fatal.
const maxLineLen = 4096

type Options struct {
	Recursive      bool
	FollowSymlinks bool
	Excludes       []*regexp2.Regexp
	Ignore         []expression.CompiledExpression
}

type Scanner struct {
	log     *logrus.Entry
	opts    Options
	prober  *probe.Prober
	classes *classmap.ClassMap
	visited *strset.Set
}

func New(prober *probe.Prober, classes *classmap.ClassMap, opts Options) *Scanner {
	return &Scanner{
		log:     logger.GetLogger("scanner"),
		opts:    opts,
		prober:  prober,
		classes: classes,
		visited: strset.New(),
	}
}

// ScanArgs feeds each argument through the probe. Arguments naming
// directories have their immediate entries enumerated; subdirectories are
// descended into only in recursive mode. Exclude patterns never apply to
// paths named directly.
func (s *Scanner) ScanArgs(args []string) {
	for _, arg := range args {
		res := s.enter(arg, ".")
		if res.Kind == probe.Dir {
			s.enterDir(res.Path)
		}
	}
}

// ScanListFile reads one candidate path per line; "-" means stdin.
func (s *Scanner) ScanListFile(path string) error {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open list file %q", path)
		}
		defer f.Close()
		in = f
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, maxLineLen), maxLineLen)

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		res := s.enter(line, ".")
		if res.Kind == probe.Dir {
			s.enterDir(res.Path)
		}
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return errors.Errorf("list file %q: line exceeds %d bytes", path, maxLineLen)
		}
		return errors.Wrapf(err, "read list file %q", path)
	}

	return nil
}

// enter probes one candidate and inserts regular files into the class map.
func (s *Scanner) enter(filename, directory string) probe.Result {
	res := s.prober.Probe(filename, directory)
	if res.Kind != probe.File {
		return res
	}

	if len(s.opts.Ignore) > 0 {
		f := expression.File{
			Name:  filepath.Base(res.Record.Name),
			Dir:   res.Record.Dir,
			Path:  res.Record.Name,
			Size:  res.Key.Size,
			UID:   res.Key.UID,
			GID:   res.Key.GID,
			Perms: res.Key.Perms,
		}

		match, reason, err := expression.CheckFileSingleMatch(f, s.opts.Ignore)
		if err != nil {
			s.log.WithError(err).Warnf("Failed evaluating filter for %q", res.Record.Name)
		} else if match {
			s.log.Debugf("Ignoring %q: matched %q", res.Record.Name, reason)
			return probe.Result{Kind: probe.Missing, Path: res.Path}
		}
	}

	s.classes.Insert(res.Record, res.Key)
	return res
}

// markVisited records the directory's device:inode pair and reports
// whether it had been seen before. Guards against enumerating the same
// directory twice and against symlink cycles in recursive mode.
func (s *Scanner) markVisited(dir string) bool {
	id, err := probe.ID(dir)
	if err != nil {
		return false
	}
	if s.visited.Has(id) {
		return true
	}
	s.visited.Add(id)
	return false
}

func (s *Scanner) enterDir(dir string) {
	if s.markVisited(dir) {
		s.log.Debugf("Skipping already-visited directory %q", dir)
		return
	}

	if s.opts.Recursive {
		s.walkDir(dir)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Errorf("cannot open directory %s: %v", dir, err)
		return
	}

	for _, entry := range entries {
		if s.excluded(paths.Join(dir, entry.Name())) {
			continue
		}
		s.enter(entry.Name(), dir)
	}
}

// walkDir descends into root, feeding every entry through the probe.
// Symlinked directories are entered only in follow mode; fastwalk tracks
// its own cycle state on top of the visited set.
func (s *Scanner) walkDir(root string) {
	conf := fastwalk.Config{
		NumWorkers: 1,
		Follow:     s.opts.FollowSymlinks,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Errorf("cannot open directory %s: %v", filepath.Dir(path), err)
			return nil
		}
		if path == root {
			return nil
		}

		if s.excluded(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.markVisited(path) {
				return filepath.SkipDir
			}
			return nil
		}

		s.enter(d.Name(), filepath.Dir(path))
		return nil
	})
	if err != nil {
		s.log.Errorf("cannot walk directory %s: %v", root, err)
	}
}

func (s *Scanner) excluded(path string) bool {
	if paths.IsIgnored(path, s.opts.Excludes) {
		s.log.Tracef("Skipping excluded path %q", path)
		return true
	}
	return false
}
