package geolib_test

import (
	"net"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/stretchr/testify/mock"
)

type DatasetMock struct {
	mock.Mock
}

func (m *DatasetMock) Name() string {
	return m.Called().String(0)
}

func (m *DatasetMock) Lookup(ip net.IP) (geolib.LookupResult, error) {
	args := m.Called(ip)

	return args.Get(0).(geolib.LookupResult), args.Error(1)
}

func (m *DatasetMock) Close() error {
	return m.Called().Error(0)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(address, name string, err error) {
	m.Called(address, name, err)
}

func (m *LoggerMock) UpdateInfo(name, msg string) {
	m.Called(name, msg)
}

func (m *LoggerMock) UpdateError(name string, err error) {
	m.Called(name, err)
}

func mustRangeTable(name string, entries ...geolib.RangeEntry) *geolib.RangeTable {
	table, err := geolib.NewRangeTable(name, entries)
	if err != nil {
		panic(err)
	}

	return table
}

func mustRange(start, end string) geolib.IPRange {
	startValue, _ := geolib.IPv4ToUint32(net.ParseIP(start))
	endValue, _ := geolib.IPv4ToUint32(net.ParseIP(end))

	return geolib.IPRange{Start: startValue, End: endValue}
}
