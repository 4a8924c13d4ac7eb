package types

// ExtKind resolves a file extension to the (language, category) pair the
// Grammar Model assigns it.
type ExtKind struct {
	Language string
	Category string
}

// DiscoveredFile is an immutable record produced by the file walker.
// Its ContentHash is a fixed-width 256-bit BLAKE3 digest of the file
// bytes, used as the content-addressing key throughout the manifest.
type DiscoveredFile struct {
	Path        string
	Size        int64
	ContentHash [32]byte
	ExtKind     ExtKind
}

// NewDiscoveredFile constructs an immutable DiscoveredFile.
func NewDiscoveredFile(path string, size int64, contentHash [32]byte, extKind ExtKind) DiscoveredFile {
	return DiscoveredFile{
		Path:        path,
		Size:        size,
		ContentHash: contentHash,
		ExtKind:     extKind,
	}
}
