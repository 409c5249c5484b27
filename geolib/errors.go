package geolib

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

var (
	// ErrInvalidAddress is wrapped by every error caused by malformed IP
	// address strings.
	ErrInvalidAddress = errors.New("invalid ip address")

	// ErrDatasetLoad is matched by every DatasetLoadError.
	ErrDatasetLoad = errors.New("cannot load dataset")

	// ErrUnsortedRanges is returned if ranges are not sorted by start
	// address or overlap.
	ErrUnsortedRanges = errors.New("ranges are not sorted or overlap")

	ErrEnricherShutdown = errors.New("enricher instance was shutdown")
	ErrContextIsClosed  = errors.New("context is closed")
)

// InvalidAddressError is returned if address string cannot be parsed
// as IP address.
type InvalidAddressError struct {
	Address string
}

func (i *InvalidAddressError) Error() string {
	return ErrInvalidAddress.Error() + " " + strconv.Quote(i.Address)
}

func (i *InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// DatasetLoadError is returned if dataset file is missing, truncated or
// has unrecognized format. It is fatal: no dataset is returned with
// this error.
type DatasetLoadError struct {
	Path string
	Err  error
}

func (d *DatasetLoadError) Error() string {
	msg := ErrDatasetLoad.Error()

	if d.Path != "" {
		msg += " " + d.Path
	}

	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}

	return msg
}

func (d *DatasetLoadError) Unwrap() error {
	return d.Err
}

func (d *DatasetLoadError) Is(target error) bool {
	return target == ErrDatasetLoad
}

// NewDatasetLoadError wraps err into DatasetLoadError.
func NewDatasetLoadError(path string, err error) error {
	return &DatasetLoadError{
		Path: path,
		Err:  err,
	}
}

type jsonHTTPError struct {
	Error struct {
		Message string `json:"message"`
		Context string `json:"context"`
	} `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	value := jsonHTTPError{}
	value.Error.Message = h.Message()
	value.Error.Context = h.Err()

	return json.Marshal(&value)
}
