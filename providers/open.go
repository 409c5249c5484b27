package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/spf13/afero"
)

// Open loads a dataset of a given kind. If kind is empty, it is
// detected by file extension; .gz and .zst suffixes are ignored.
func Open(fs afero.Fs, kind, path string) (geolib.Dataset, error) {
	if kind == "" {
		kind = DetectKind(path)
	}

	var (
		rv  geolib.Dataset
		err error
	)

	switch kind {
	case NameIP2Bin:
		rv, err = asDataset(OpenIP2Bin(fs, path))
	case NameIP2Location:
		rv, err = asDataset(OpenIP2Location(fs, path))
	case NameMMDB:
		rv, err = asDataset(OpenMMDB(fs, path))
	case NameCSV:
		rv, err = asDataset(OpenCSVRanges(fs, path))
	default:
		err = geolib.NewDatasetLoadError(path, fmt.Errorf("%w %q", ErrUnknownKind, kind))
	}

	return rv, err
}

// asDataset does not let typed nil pointers leak as non-nil
// interfaces.
func asDataset[T geolib.Dataset](dataset T, err error) (geolib.Dataset, error) {
	if err != nil {
		return nil, err
	}

	return dataset, nil
}

// DetectKind returns a dataset kind by file extension or an empty
// string.
func DetectKind(path string) string {
	name := strings.ToLower(filepath.Base(path))

	for _, suffix := range []string{".gz", ".zst"} {
		name = strings.TrimSuffix(name, suffix)
	}

	switch filepath.Ext(name) {
	case ".bin":
		return NameIP2Bin
	case ".mmdb":
		return NameMMDB
	case ".csv":
		return NameCSV
	}

	return ""
}
