package providers

import "errors"

var (
	// ErrUnknownKind is returned if dataset kind is not supported or
	// cannot be detected by file extension.
	ErrUnknownKind = errors.New("unknown dataset kind")

	// ErrArchive is returned if dataset is still packed into zip
	// archive as it is distributed by vendors.
	ErrArchive = errors.New("zip archive has to be extracted first")

	// ErrTruncated is returned if dataset file is shorter than its
	// header claims.
	ErrTruncated = errors.New("file is truncated")

	// ErrUnsupportedFormat is returned if file header is unknown.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoRanges is returned if dataset has no IPv4 ranges.
	ErrNoRanges = errors.New("dataset has no ranges")

	errCorruptedRecord = errors.New("corrupted record")
)
