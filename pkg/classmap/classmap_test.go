package classmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name string, ino uint64) *FileRecord {
	return &FileRecord{Name: name, Inode: ino, Nlink: 1}
}

func TestInsertGroupsByKey(t *testing.T) {
	m := New(IgnoreFlags{})

	key := ClassKey{Size: 13, Device: 1, UID: 1000, GID: 1000, Perms: 0o644}
	m.Insert(record("a", 1), key)
	m.Insert(record("b", 2), key)

	require.Equal(t, 1, m.Length())
	assert.Equal(t, 2, m.Candidates())
}

func TestInsertSeparatesBySize(t *testing.T) {
	m := New(IgnoreFlags{})

	m.Insert(record("a", 1), ClassKey{Size: 3, Device: 1})
	m.Insert(record("b", 2), ClassKey{Size: 4, Device: 1})

	assert.Equal(t, 2, m.Length())
}

func TestInsertSeparatesByDevice(t *testing.T) {
	// hard links cannot cross devices, so device always partitions
	m := New(IgnoreFlags{Owner: true, Group: true, Perms: true})

	m.Insert(record("a", 1), ClassKey{Size: 3, Device: 1})
	m.Insert(record("b", 2), ClassKey{Size: 3, Device: 2})

	assert.Equal(t, 2, m.Length())
}

func TestInsertOwnershipKey(t *testing.T) {
	tests := []struct {
		name    string
		ignore  IgnoreFlags
		classes int
	}{
		{"uid keyed", IgnoreFlags{}, 2},
		{"uid ignored", IgnoreFlags{Owner: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.ignore)
			m.Insert(record("a", 1), ClassKey{Size: 3, Device: 1, UID: 1000})
			m.Insert(record("b", 2), ClassKey{Size: 3, Device: 1, UID: 1001})
			assert.Equal(t, tt.classes, m.Length())
		})
	}
}

func TestInsertPermsKey(t *testing.T) {
	m := New(IgnoreFlags{})
	m.Insert(record("a", 1), ClassKey{Size: 3, Device: 1, Perms: 0o644})
	m.Insert(record("b", 2), ClassKey{Size: 3, Device: 1, Perms: 0o600})
	require.Equal(t, 2, m.Length())

	m = New(IgnoreFlags{Perms: true})
	m.Insert(record("a", 1), ClassKey{Size: 3, Device: 1, Perms: 0o644})
	m.Insert(record("b", 2), ClassKey{Size: 3, Device: 1, Perms: 0o600})
	assert.Equal(t, 1, m.Length())
}

func TestMemberOrderIsReverseInsertion(t *testing.T) {
	m := New(IgnoreFlags{})
	key := ClassKey{Size: 3, Device: 1}

	m.Insert(record("a", 1), key)
	m.Insert(record("b", 2), key)
	m.Insert(record("c", 3), key)

	members := m.Classes()[0].Members
	require.Len(t, members, 3)
	assert.Equal(t, "c", members[0].Name)
	assert.Equal(t, "b", members[1].Name)
	assert.Equal(t, "a", members[2].Name)
}

func TestClassOrderIsInsertionOrder(t *testing.T) {
	m := New(IgnoreFlags{})

	m.Insert(record("a", 1), ClassKey{Size: 1, Device: 1})
	m.Insert(record("b", 2), ClassKey{Size: 2, Device: 1})
	m.Insert(record("c", 3), ClassKey{Size: 3, Device: 1})

	classes := m.Classes()
	require.Len(t, classes, 3)
	assert.Equal(t, int64(1), classes[0].Size)
	assert.Equal(t, int64(2), classes[1].Size)
	assert.Equal(t, int64(3), classes[2].Size)
}
