// Package mmap provides read-only memory-mapped file access.
//
// # Usage
//
//	m, err := mmap.Open("points.csv")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.AdviseSequential()
//	r := io.NewSectionReader(m, 0, int64(m.Size()))
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for the sequential hint
//   - Windows: CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// Mappings are safe for concurrent reads. Close is idempotent; ReadAt
// returns ErrClosed afterwards.
package mmap
