package geolib

import "net"

// Dataset is a read-only table of IP ranges. Implementations must be
// safe for concurrent use.
//
// Lookup returns NotFound (and no error) if address is outside of all
// known ranges or dataset does not support an address family.
type Dataset interface {
	Name() string
	Lookup(net.IP) (LookupResult, error)
	Close() error
}

// Reloadable is a dataset which swaps its content at runtime. Callbacks
// are executed after each successful reload.
type Reloadable interface {
	OnReload(callback func())
}

type Logger interface {
	LookupError(address string, name string, err error)
	UpdateInfo(name string, msg string)
	UpdateError(name string, err error)
}
