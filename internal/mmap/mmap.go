// Package mmap provides read-only memory mapping of index artifact files.
//
// Index artifacts (primary keys, vocabulary, postings) are loaded once and
// read for the lifetime of the engine, so a shared read-only mapping is the
// cheapest way to get them resident. On platforms without mmap support the
// file is read into memory instead; callers cannot tell the difference.
package mmap

// Mapping is a read-only view of a file.
type Mapping struct {
	data   []byte
	mapped bool
}

// Bytes returns the mapped content. The slice is valid until Close.
func (m *Mapping) Bytes() []byte {
	return m.data
}
