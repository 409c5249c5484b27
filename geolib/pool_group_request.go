package geolib

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type enrichRequest struct {
	ctx     context.Context
	index   int
	address string
	results []Enrichment
	wg      *sync.WaitGroup
}

// poolGroupRequest schedules a batch of addresses into a pool. Each
// task writes into its own slot of results.
type poolGroupRequest struct {
	ctx     context.Context
	cancel  context.CancelFunc
	results []Enrichment
	wg      *sync.WaitGroup
	pool    *ants.PoolWithFunc
}

func (p *poolGroupRequest) Do(ctx context.Context, index int, address string) error {
	select {
	case <-ctx.Done():
		return ErrContextIsClosed
	case <-p.ctx.Done():
		return ErrContextIsClosed
	default:
	}

	p.wg.Add(1)

	req := &enrichRequest{
		ctx:     p.ctx,
		index:   index,
		address: address,
		results: p.results,
		wg:      p.wg,
	}

	if err := p.pool.Invoke(req); err != nil {
		p.wg.Done()
		p.cancel()

		return fmt.Errorf("cannot schedule a task: %w", err)
	}

	return nil
}

func newPoolGroupRequest(ctx context.Context,
	results []Enrichment,
	wg *sync.WaitGroup,
	pool *ants.PoolWithFunc) *poolGroupRequest {
	ctx, cancel := context.WithCancel(ctx)

	return &poolGroupRequest{
		ctx:     ctx,
		cancel:  cancel,
		results: results,
		wg:      wg,
		pool:    pool,
	}
}
