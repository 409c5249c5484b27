package providers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicZip  = []byte("PK")
)

// readDatasetFile reads the whole file into memory. gzip and zstd
// files are detected by magic bytes and decompressed.
func readDatasetFile(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read a file: %w", err)
	}

	switch {
	case bytes.HasPrefix(data, magicGzip):
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("incorrect gzip file: %w", err)
		}

		defer reader.Close()

		data, err = io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress gzip file: %w", err)
		}
	case bytes.HasPrefix(data, magicZstd):
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("cannot create zstd decoder: %w", err)
		}

		defer decoder.Close()

		data, err = decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress zstd file: %w", err)
		}
	}

	if bytes.HasPrefix(data, magicZip) {
		return nil, ErrArchive
	}

	return data, nil
}

// bytesFile adapts an in-memory file to readers which want a file
// handle.
type bytesFile struct {
	*bytes.Reader
}

func (b bytesFile) Close() error {
	return nil
}

func newBytesFile(data []byte) bytesFile {
	return bytesFile{bytes.NewReader(data)}
}
