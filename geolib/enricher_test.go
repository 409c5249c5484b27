package geolib_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type EnricherTestSuite struct {
	suite.Suite

	e            *geolib.Enricher
	datasetMocks []*DatasetMock
	logMock      *LoggerMock
}

func (suite *EnricherTestSuite) SetupTest() {
	suite.logMock = &LoggerMock{}
	suite.datasetMocks = []*DatasetMock{{}, {}}

	suite.logMock.On("UpdateInfo", mock.Anything, mock.Anything).Maybe()
	suite.logMock.On("UpdateError", mock.Anything, mock.Anything).Maybe()

	datasets := []geolib.Dataset{}

	for idx, v := range suite.datasetMocks {
		v.On("Name").Return("d" + strconv.Itoa(idx)).Maybe()
		v.On("Close").Return(nil).Once()

		datasets = append(datasets, v)
	}

	e, err := geolib.NewEnricher(datasets, suite.logMock, 10)
	if err != nil {
		panic(err)
	}

	suite.e = e
}

func (suite *EnricherTestSuite) TearDownTest() {
	suite.e.Shutdown()

	suite.logMock.AssertExpectations(suite.T())

	for _, v := range suite.datasetMocks {
		v.AssertExpectations(suite.T())
	}
}

func (suite *EnricherTestSuite) TestShutdown() {
	suite.e.Shutdown()

	res, err := suite.e.Enrich(context.Background(), "127.0.0.1")

	suite.True(errors.Is(err, geolib.ErrEnricherShutdown))
	suite.False(res.OK())

	_, err = suite.e.EnrichAll(context.Background(), []string{"127.0.0.1"})

	suite.True(errors.Is(err, geolib.ErrEnricherShutdown))
}

func (suite *EnricherTestSuite) TestEnrichCtxClosed() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := suite.e.Enrich(ctx, "127.0.0.1")

	suite.True(errors.Is(err, geolib.ErrContextIsClosed))
}

func (suite *EnricherTestSuite) TestEnrichAllCtxClosed() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := suite.e.EnrichAll(ctx, []string{"127.0.0.1", "127.0.0.2"})

	suite.True(errors.Is(err, geolib.ErrContextIsClosed))
}

func (suite *EnricherTestSuite) TestEnrichFirstFound() {
	ip := net.ParseIP("80.80.80.80")
	ipRange := mustRange("80.80.0.0", "80.80.255.255")

	suite.datasetMocks[0].
		On("Lookup", ip).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "RU", City: "Moscow"}, &ipRange), nil).
		Once()

	res, err := suite.e.Enrich(context.Background(), "80.80.80.80")

	suite.NoError(err)
	suite.True(res.OK())
	suite.Equal("d0", res.Source)
	suite.Equal("Moscow", res.Location.City)
	suite.Equal("RUS", res.Country.Alpha3Code)
	suite.Equal(&ipRange, res.Range)
}

func (suite *EnricherTestSuite) TestEnrichFallback() {
	ip := net.ParseIP("80.80.80.80")

	suite.datasetMocks[0].On("Lookup", ip).Return(geolib.NotFound, nil).Once()
	suite.datasetMocks[1].
		On("Lookup", ip).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "DE"}, nil), nil).
		Once()

	res, err := suite.e.Enrich(context.Background(), "80.80.80.80")

	suite.NoError(err)
	suite.True(res.OK())
	suite.Equal("d1", res.Source)
	suite.Equal("Germany", res.Country.CommonName)
}

func (suite *EnricherTestSuite) TestEnrichFailureIsSkipped() {
	ip := net.ParseIP("80.80.80.80")

	suite.logMock.On("LookupError", "80.80.80.80", "d0", io.EOF).Once()
	suite.datasetMocks[0].On("Lookup", ip).Return(geolib.NotFound, io.EOF).Once()
	suite.datasetMocks[1].
		On("Lookup", ip).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "DE"}, nil), nil).
		Once()

	res, err := suite.e.Enrich(context.Background(), "80.80.80.80")

	suite.NoError(err)
	suite.Equal("d1", res.Source)
}

func (suite *EnricherTestSuite) TestEnrichNotFound() {
	ip := net.ParseIP("10.0.0.1")

	suite.datasetMocks[0].On("Lookup", ip).Return(geolib.NotFound, nil).Once()
	suite.datasetMocks[1].On("Lookup", ip).Return(geolib.NotFound, nil).Once()

	res, err := suite.e.Enrich(context.Background(), "10.0.0.1")

	suite.NoError(err)
	suite.False(res.OK())
	suite.Empty(res.Source)
	suite.Equal("10.0.0.1", res.IP.String())
}

func (suite *EnricherTestSuite) TestEnrichMalformed() {
	suite.logMock.On("LookupError", "999.999.1.1", "", mock.Anything).Once()

	res, err := suite.e.Enrich(context.Background(), "999.999.1.1")

	suite.True(errors.Is(err, geolib.ErrInvalidAddress))
	suite.False(res.OK())
	suite.Equal("999.999.1.1", res.Address)
}

func (suite *EnricherTestSuite) TestEnrichAll() {
	addresses := []string{"10.0.0.1", "abc", "80.80.80.80", "10.0.0.2"}

	suite.logMock.On("LookupError", "abc", "", mock.Anything).Once()

	for _, v := range []string{"10.0.0.1", "10.0.0.2"} {
		ip := net.ParseIP(v)

		suite.datasetMocks[0].On("Lookup", ip).Return(geolib.NotFound, nil).Once()
		suite.datasetMocks[1].On("Lookup", ip).Return(geolib.NotFound, nil).Once()
	}

	suite.datasetMocks[0].
		On("Lookup", net.ParseIP("80.80.80.80")).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "RU"}, nil), nil).
		Once()

	results, err := suite.e.EnrichAll(context.Background(), addresses)

	suite.NoError(err)
	suite.Len(results, len(addresses))

	for i, v := range results {
		suite.Equal(addresses[i], v.Address)
	}

	suite.False(results[0].OK())
	suite.False(results[1].OK())
	suite.Nil(results[1].IP)
	suite.True(results[2].OK())
	suite.Equal("RU", results[2].Location.CountryCode)
	suite.False(results[3].OK())
}

func (suite *EnricherTestSuite) TestEnrichmentJSON() {
	ip := net.ParseIP("80.80.80.80")

	suite.datasetMocks[0].
		On("Lookup", ip).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "RU"}, nil), nil).
		Once()

	res, _ := suite.e.Enrich(context.Background(), "80.80.80.80")
	data, err := json.Marshal(res)

	suite.NoError(err)

	raw := map[string]interface{}{}

	suite.NoError(json.Unmarshal(data, &raw))
	suite.Equal(true, raw["found"])
	suite.Equal("80.80.80.80", raw["ip"])
	suite.Equal("d0", raw["source"])
	suite.NotContains(raw, "range")
}

func (suite *EnricherTestSuite) TestUsageStats() {
	ip := net.ParseIP("80.80.80.80")

	suite.datasetMocks[0].On("Lookup", ip).Return(geolib.NotFound, nil).Once()
	suite.datasetMocks[1].
		On("Lookup", ip).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "RU"}, nil), nil).
		Once()

	suite.e.Enrich(context.Background(), "80.80.80.80") // nolint: errcheck

	stats := suite.e.UsageStats()

	suite.Len(stats, 2)
	suite.Equal("d0", stats[0].Name)
	suite.Equal("d1", stats[1].Name)

	data, err := json.Marshal(stats)

	suite.NoError(err)
	suite.Contains(string(data), `"not_found_count":1`)
	suite.Contains(string(data), `"found_count":1`)
}

func TestEnricher(t *testing.T) {
	suite.Run(t, &EnricherTestSuite{})
}

type EnricherNewTestSuite struct {
	suite.Suite
}

func (suite *EnricherNewTestSuite) TestNoDatasets() {
	_, err := geolib.NewEnricher(nil, &LoggerMock{}, 0)

	suite.Error(err)
}

func (suite *EnricherNewTestSuite) TestDuplicateNames() {
	d1 := &DatasetMock{}
	d2 := &DatasetMock{}

	d1.On("Name").Return("same")
	d2.On("Name").Return("same")

	_, err := geolib.NewEnricher([]geolib.Dataset{d1, d2}, &LoggerMock{}, 0)

	suite.Error(err)
}

func TestEnricherNew(t *testing.T) {
	suite.Run(t, &EnricherNewTestSuite{})
}
