//go:build !unix

package mmap

import "os"

// Open reads the file at path into memory on platforms without mmap.
func Open(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

// Close releases the mapping.
func (m *Mapping) Close() error {
	m.data = nil
	return nil
}
