package domain

import "time"

// FileHandle is the opaque identifier for a file in the source store.
// It is externally supplied and never interpreted beyond being passed
// to the source store's API.
type FileHandle = string

// FileInfo describes a source file as resolved from the store's metadata.
// It is immutable after creation.
type FileInfo struct {
	// Name is the file name as reported by the source store.
	Name string

	// SizeBytes is the file size. Zero means unknown and disables
	// size-based tie-breaking during duplicate matching.
	SizeBytes int64

	// MimeType is the reported content type.
	MimeType string

	// Checksum is the source store's content hash, when available.
	Checksum string
}

// DestinationEntry is one file currently known to exist at the destination.
type DestinationEntry struct {
	// ID is the destination's identifier for the file. Never empty.
	ID string

	// Name is the raw file name at the destination.
	Name string

	// NormalizedName is derived deterministically from Name whenever the
	// destination listing is refreshed. May be empty (unmatchable).
	NormalizedName string

	// SizeBytes is the file size at the destination.
	SizeBytes int64

	// UploadedAt is when the destination reports the file was uploaded.
	UploadedAt time.Time
}
