package geolib

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PoolFuncMock struct {
	mock.Mock
}

func (m *PoolFuncMock) Do(arg interface{}) {
	m.Called(arg)

	arg.(*enrichRequest).wg.Done()
}

type PoolGroupRequestTestSuite struct {
	suite.Suite

	ctx      context.Context
	cancel   context.CancelFunc
	results  []Enrichment
	pool     *ants.PoolWithFunc
	wg       *sync.WaitGroup
	poolFunc *PoolFuncMock
	pgr      *poolGroupRequest
}

func (suite *PoolGroupRequestTestSuite) SetupTest() {
	suite.ctx, suite.cancel = context.WithCancel(context.Background())
	suite.results = make([]Enrichment, 2)
	suite.wg = &sync.WaitGroup{}
	suite.poolFunc = &PoolFuncMock{}
	suite.pool, _ = ants.NewPoolWithFunc(5, suite.poolFunc.Do)
	suite.pgr = newPoolGroupRequest(suite.ctx, suite.results, suite.wg, suite.pool)
}

func (suite *PoolGroupRequestTestSuite) TearDownTest() {
	suite.wg.Wait()
	suite.cancel()
	suite.pool.Release()

	suite.poolFunc.AssertExpectations(suite.T())
}

func (suite *PoolGroupRequestTestSuite) TestParentClosed() {
	suite.cancel()

	ctx := context.Background()

	suite.True(errors.Is(suite.pgr.Do(ctx, 0, "127.0.0.1"), ErrContextIsClosed))
	suite.True(errors.Is(suite.pgr.Do(ctx, 1, "127.0.0.1"), ErrContextIsClosed))
}

func (suite *PoolGroupRequestTestSuite) TestSelfClosed() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite.True(errors.Is(suite.pgr.Do(ctx, 0, "127.0.0.1"), ErrContextIsClosed))
}

func (suite *PoolGroupRequestTestSuite) TestPoolReleased() {
	suite.pool.Release()

	suite.Error(suite.pgr.Do(context.Background(), 0, "127.0.0.1"))
	suite.True(errors.Is(suite.pgr.Do(context.Background(), 1, "127.0.0.1"), ErrContextIsClosed))
}

func (suite *PoolGroupRequestTestSuite) TestScheduled() {
	suite.poolFunc.On("Do", mock.MatchedBy(func(req *enrichRequest) bool {
		return req.index == 1 && req.address == "127.0.0.1"
	})).Once()

	suite.NoError(suite.pgr.Do(context.Background(), 1, "127.0.0.1"))
}

func TestPoolGroupRequest(t *testing.T) {
	suite.Run(t, &PoolGroupRequestTestSuite{})
}
