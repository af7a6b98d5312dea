package classmap

import (
	"github.com/ratlabs/ratl/pkg/logger"
)

func New(ignore IgnoreFlags) *ClassMap {
	return &ClassMap{
		ignore: ignore,
		log:    logger.GetLogger("classmap"),
	}
}

func (m *ClassMap) matches(c *Class, key ClassKey) bool {
	if c.Size != key.Size || c.Device != key.Device {
		return false
	}
	if !m.ignore.Owner && c.UID != key.UID {
		return false
	}
	if !m.ignore.Group && c.GID != key.GID {
		return false
	}
	if !m.ignore.Perms && c.Perms != key.Perms {
		return false
	}
	return true
}

// Insert places the record into the first class whose key matches, or opens
// a new class at the end of the list. New members go to the head of the
// class, so member order is reverse-insertion.
func (m *ClassMap) Insert(rec *FileRecord, key ClassKey) {
	for _, c := range m.classes {
		if m.matches(c, key) {
			m.log.Tracef("Associating %q with %q", rec.Name, c.Members[0].Name)
			c.Members = append([]*FileRecord{rec}, c.Members...)
			return
		}
	}

	m.classes = append(m.classes, &Class{
		ClassKey: key,
		Members:  []*FileRecord{rec},
	})
}

// Classes returns the class list in insertion order.
func (m *ClassMap) Classes() []*Class {
	return m.classes
}

// Candidates returns the total number of records across all classes.
func (m *ClassMap) Candidates() int {
	n := 0
	for _, c := range m.classes {
		n += len(c.Members)
	}
	return n
}

func (m *ClassMap) Length() int {
	return len(m.classes)
}
