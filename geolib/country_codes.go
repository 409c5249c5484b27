package geolib

import (
	"bytes"
	"strings"

	"github.com/pariz/gountries"
)

var (
	countryCodeQuery = gountries.New()

	// zero elements mean 'unknown country'
	countryCodeMapCC2String = []string{""}
	countryCodeMapString2CC = map[string]CountryCode{"": 0}
)

// CountryCode is a compact identifier of the ISO3166 country. Zero
// value means an unknown country.
type CountryCode uint8

// MarshalJSON is to conform json.Marshaller interface.
func (c CountryCode) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}

	buf.WriteByte('"')
	buf.WriteString(c.String())
	buf.WriteByte('"')

	return buf.Bytes(), nil
}

// String returns 2-letter ISO3166 country code.
func (c CountryCode) String() string {
	if int(c) >= len(countryCodeMapCC2String) {
		return ""
	}

	return countryCodeMapCC2String[int(c)]
}

// Known checks if country code is not empty.
func (c CountryCode) Known() bool {
	return c > 0 && int(c) < len(countryCodeMapCC2String)
}

// Details returns consolidated names for the country.
func (c CountryCode) Details() CountryDetails {
	if !c.Known() {
		return CountryDetails{}
	}

	country := countryCodeQuery.Countries[c.String()]

	return CountryDetails{
		Alpha2Code:   country.Alpha2,
		Alpha3Code:   country.Alpha3,
		CommonName:   country.Name.Common,
		OfficialName: country.Name.Official,
	}
}

// CountryDetails is a set of ISO3166 names of the country.
type CountryDetails struct {
	Alpha2Code   string `json:"alpha2_code"`
	Alpha3Code   string `json:"alpha3_code"`
	CommonName   string `json:"common_name"`
	OfficialName string `json:"official_name"`
}

// NormalizeAlpha2Code returns uppercased 2-letter ISO3166 code with
// some legacy mapping. Databases use ZZ or dash for unknown countries
// and still have pre-ISO codes like UK or YU.
func NormalizeAlpha2Code(alpha2 string) string {
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))

	if len(alpha2) != 2 {
		return ""
	}

	switch alpha2 {
	case "ZZ", "AP", "EU", "XX":
		return ""
	case "YU":
		return "CS"
	case "FX":
		return "FR"
	case "UK":
		return "GB"
	default:
		return alpha2
	}
}

// Alpha2ToCountryCode maps 2-letter ISO3166 code to CountryCode.
func Alpha2ToCountryCode(alpha2 string) CountryCode {
	return countryCodeMapString2CC[NormalizeAlpha2Code(alpha2)]
}

// Alpha3ToCountryCode maps 3-letter ISO3166 code to CountryCode.
func Alpha3ToCountryCode(alpha3 string) CountryCode {
	return Alpha2ToCountryCode(countryCodeQuery.Alpha3ToAlpha2[strings.ToUpper(alpha3)])
}

func init() {
	for k := range countryCodeQuery.Countries {
		k = NormalizeAlpha2Code(k)

		if _, ok := countryCodeMapString2CC[k]; k == "" || ok {
			continue
		}

		countryCodeMapCC2String = append(countryCodeMapCC2String, k)
		countryCodeMapString2CC[k] = CountryCode(len(countryCodeMapCC2String) - 1)
	}
}
