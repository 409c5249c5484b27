package geolib_test

import (
	"encoding/json"
	"testing"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/stretchr/testify/suite"
)

type CountryCodeTestSuite struct {
	suite.Suite
}

func (suite *CountryCodeTestSuite) TestNormalizeAlpha2Code() {
	suite.Equal("RU", geolib.NormalizeAlpha2Code("ru"))
	suite.Equal("US", geolib.NormalizeAlpha2Code(" us "))
	suite.Equal("", geolib.NormalizeAlpha2Code("zz"))
	suite.Equal("", geolib.NormalizeAlpha2Code("Eu"))
	suite.Equal("", geolib.NormalizeAlpha2Code("-"))
	suite.Equal("", geolib.NormalizeAlpha2Code("RUS"))
	suite.Equal("FR", geolib.NormalizeAlpha2Code("FX"))
	suite.Equal("GB", geolib.NormalizeAlpha2Code("UK"))
}

func (suite *CountryCodeTestSuite) TestAlpha2ToCountryCode() {
	suite.Equal(geolib.CountryCode(0), geolib.Alpha2ToCountryCode("zz"))
	suite.False(geolib.Alpha2ToCountryCode("").Known())
	suite.Equal("RU", geolib.Alpha2ToCountryCode("ru").String())
}

func (suite *CountryCodeTestSuite) TestAlpha3ToCountryCode() {
	suite.Equal(geolib.CountryCode(0), geolib.Alpha3ToCountryCode("zzz"))
	suite.Equal("RU", geolib.Alpha3ToCountryCode("rus").String())
}

func (suite *CountryCodeTestSuite) TestDetails() {
	details := geolib.Alpha2ToCountryCode("us").Details()

	suite.Equal("US", details.Alpha2Code)
	suite.Equal("USA", details.Alpha3Code)
	suite.Empty(geolib.CountryCode(0).Details())
}

func (suite *CountryCodeTestSuite) TestMarshalJSON() {
	data, err := json.Marshal(geolib.Alpha2ToCountryCode("de"))

	suite.NoError(err)
	suite.Equal(`"DE"`, string(data))
}

func TestCountryCode(t *testing.T) {
	suite.Run(t, &CountryCodeTestSuite{})
}
