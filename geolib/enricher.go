package geolib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultWorkerPoolSize = 4096

	workerPoolExpireTime = time.Minute
)

// Enrichment is a result of enriching a single address.
type Enrichment struct {
	Address  string         `json:"address"`
	IP       net.IP         `json:"ip"`
	Source   string         `json:"source"`
	Location LocationRecord `json:"location"`
	Range    *IPRange       `json:"range,omitempty"`
	Country  CountryDetails `json:"country"`

	found bool
}

// OK reports if any dataset has found a location.
func (e Enrichment) OK() bool {
	return e.found
}

// MarshalJSON is to conform json.Marshaller interface.
func (e Enrichment) MarshalJSON() ([]byte, error) {
	type enrichment Enrichment

	value := struct {
		enrichment

		Found bool `json:"found"`
	}{
		enrichment: enrichment(e),
		Found:      e.found,
	}

	return json.Marshal(&value)
}

// Enricher asks a chain of datasets for an address location. The first
// dataset which finds an address wins; others are asked only if previous
// ones have nothing.
type Enricher struct {
	logger     Logger
	datasets   []Dataset
	usageStats map[string]*UsageStats
	rwmutex    sync.RWMutex
	closeOnce  sync.Once
	workerPool *ants.PoolWithFunc
	closed     bool
}

func (e *Enricher) Enrich(ctx context.Context, address string) (Enrichment, error) {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	rv := Enrichment{Address: address}

	if e.closed {
		return rv, ErrEnricherShutdown
	}

	select {
	case <-ctx.Done():
		return rv, ErrContextIsClosed
	default:
	}

	return e.enrich(address)
}

// EnrichAll enriches a batch of addresses using a worker pool. Results
// have the same order as input. Malformed addresses produce not found
// enrichments and never abort a batch.
func (e *Enricher) EnrichAll(ctx context.Context, addresses []string) ([]Enrichment, error) {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	if e.closed {
		return nil, ErrEnricherShutdown
	}

	rv := make([]Enrichment, len(addresses))
	wg := &sync.WaitGroup{}
	groupRequest := newPoolGroupRequest(ctx, rv, wg, e.workerPool)

	var scheduleErr error

	for i, v := range addresses {
		if err := groupRequest.Do(ctx, i, v); err != nil {
			scheduleErr = err

			break
		}
	}

	wg.Wait()
	groupRequest.cancel()

	switch {
	case scheduleErr != nil:
		return nil, scheduleErr
	case ctx.Err() != nil:
		return nil, ErrContextIsClosed
	}

	return rv, nil
}

// UsageStats returns usage stats of each dataset sorted by name.
func (e *Enricher) UsageStats() []*UsageStats {
	rv := make([]*UsageStats, 0, len(e.usageStats))

	for _, v := range e.usageStats {
		rv = append(rv, v)
	}

	sort.Slice(rv, func(i, j int) bool {
		return rv[i].Name < rv[j].Name
	})

	return rv
}

// Shutdown releases a worker pool and closes all datasets. Enricher
// cannot be used after that.
func (e *Enricher) Shutdown() {
	e.rwmutex.Lock()
	defer e.rwmutex.Unlock()

	e.closed = true

	e.closeOnce.Do(func() {
		e.workerPool.Release()

		for _, v := range e.datasets {
			if err := v.Close(); err != nil {
				e.logger.UpdateError(v.Name(), fmt.Errorf("cannot close dataset: %w", err))
			}
		}
	})
}

func (e *Enricher) enrichTask(args interface{}) {
	params := args.(*enrichRequest)
	defer params.wg.Done()

	select {
	case <-params.ctx.Done():
		return
	default:
	}

	// malformed addresses are already logged
	params.results[params.index], _ = e.enrich(params.address)
}

func (e *Enricher) enrich(address string) (Enrichment, error) {
	rv := Enrichment{Address: address}

	ip, err := ParseAddress(address)
	if err != nil {
		metricInvalidAddresses.Inc()
		e.logger.LookupError(address, "", err)

		return rv, err
	}

	rv.IP = ip

	for _, v := range e.datasets {
		result, err := e.lookupDataset(v, ip)

		switch {
		case err != nil:
			e.logger.LookupError(address, v.Name(), err)
		case result.OK():
			rv.found = true
			rv.Source = v.Name()
			rv.Location = result.Location
			rv.Range = result.Range
			rv.Country = Alpha2ToCountryCode(result.Location.CountryCode).Details()

			return rv, nil
		}
	}

	return rv, nil
}

func (e *Enricher) lookupDataset(dataset Dataset, ip net.IP) (LookupResult, error) {
	started := time.Now()
	result, err := dataset.Lookup(ip)

	observeLookup(dataset.Name(), result, err, time.Since(started).Seconds())
	e.usageStats[dataset.Name()].Used(result, err)

	return result, err
}

// NewEnricher creates a new enricher over a chain of datasets. Dataset
// names have to be unique.
func NewEnricher(datasets []Dataset, logger Logger, workerPoolSize int) (*Enricher, error) {
	if len(datasets) == 0 {
		return nil, errors.New("no datasets are given")
	}

	rv := &Enricher{
		logger:     logger,
		datasets:   datasets,
		usageStats: map[string]*UsageStats{},
	}

	for _, v := range datasets {
		if _, ok := rv.usageStats[v.Name()]; ok {
			return nil, fmt.Errorf("dataset %s is given twice", v.Name())
		}

		stats := &UsageStats{Name: v.Name()}
		stats.Updated()

		if reloadable, ok := v.(Reloadable); ok {
			reloadable.OnReload(stats.Updated)
		}

		rv.usageStats[v.Name()] = stats
	}

	poolSize := workerPoolSize
	if poolSize <= 0 {
		poolSize = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPoolWithFunc(poolSize, rv.enrichTask,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv.workerPool = pool

	return rv, nil
}
