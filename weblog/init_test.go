package weblog_test

import (
	"time"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/9seconds/geoweblog/weblog"
)

type nopLogger struct{}

func (nopLogger) LookupError(_, _ string, _ error) {}

func (nopLogger) UpdateInfo(_, _ string) {}

func (nopLogger) UpdateError(_ string, _ error) {}

func located(ip, country, city string) weblog.Record {
	return weblog.Record{
		ClientIP: ip,
		Location: geolib.LocationRecord{
			CountryCode: country,
			City:        city,
		},
		Located: country != "",
	}
}

func at(hour, minute int) weblog.Record {
	return weblog.Record{
		ClientIP: "192.168.1.1",
		Time:     time.Date(2023, 5, 1, hour, minute, 0, 0, time.UTC),
	}
}
