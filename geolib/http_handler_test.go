package geolib_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/qri-io/jsonschema"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var (
	jsonSchemaEnrichment = `{
      "type": "object",
      "required": ["address", "ip", "source", "location", "country", "found"],
      "properties": {
        "address": {"type": "string"},
        "ip": {"type": "string"},
        "source": {"type": "string"},
        "found": {"type": "boolean"},
        "location": {
          "type": "object",
          "required": ["country_code", "country_name", "region", "city", "latitude", "longitude"]
        },
        "range": {
          "type": "object",
          "required": ["start", "end"]
        },
        "country": {
          "type": "object",
          "required": ["alpha2_code", "alpha3_code", "common_name", "official_name"]
        }
      }
    }`

	jsonSchemaGET = func() *jsonschema.Schema {
		data := `{
          "type": "object",
          "required": ["result"],
          "additionalProperties": false,
          "properties": {
            "result": ` + jsonSchemaEnrichment + `
          }
        }`

		rv := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(data), rv); err != nil {
			panic(err)
		}

		return rv
	}()

	jsonSchemaPOST = func() *jsonschema.Schema {
		data := `{
          "type": "object",
          "required": ["results"],
          "additionalProperties": false,
          "properties": {
            "results": {
              "type": "array",
              "items": ` + jsonSchemaEnrichment + `
            }
          }
        }`

		rv := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(data), rv); err != nil {
			panic(err)
		}

		return rv
	}()

	jsonSchemaError = func() *jsonschema.Schema {
		data := `{
          "type": "object",
          "required": ["error"],
          "properties": {
            "error": {
              "type": "object",
              "required": ["message", "context"]
            }
          }
        }`

		rv := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(data), rv); err != nil {
			panic(err)
		}

		return rv
	}()
)

type HTTPHandlerTestSuite struct {
	suite.Suite

	h           http.Handler
	e           *geolib.Enricher
	datasetMock *DatasetMock
	loggerMock  *LoggerMock
	resp        *httptest.ResponseRecorder
}

func (suite *HTTPHandlerTestSuite) SetupTest() {
	suite.datasetMock = &DatasetMock{}
	suite.loggerMock = &LoggerMock{}

	suite.datasetMock.On("Name").Return("datasetMock").Maybe()
	suite.datasetMock.On("Close").Return(nil).Maybe()
	suite.loggerMock.On("UpdateInfo", mock.Anything, mock.Anything).Maybe()
	suite.loggerMock.On("LookupError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	suite.loggerMock.On("UpdateError", mock.Anything, mock.Anything).Maybe()

	e, err := geolib.NewEnricher([]geolib.Dataset{suite.datasetMock}, suite.loggerMock, 10)
	if err != nil {
		panic(err)
	}

	suite.e = e
	suite.h = geolib.NewHTTPHandler(e)
	suite.resp = httptest.NewRecorder()
}

func (suite *HTTPHandlerTestSuite) TearDownTest() {
	suite.e.Shutdown()

	suite.datasetMock.AssertExpectations(suite.T())
	suite.loggerMock.AssertExpectations(suite.T())
}

func (suite *HTTPHandlerTestSuite) ValidateBody(schema *jsonschema.Schema) {
	errs, err := schema.ValidateBytes(context.Background(), suite.resp.Body.Bytes())

	suite.NoError(err)
	suite.Empty(errs)
}

func (suite *HTTPHandlerTestSuite) TestIncorrectMethod() {
	suite.h.ServeHTTP(suite.resp, httptest.NewRequest("PATCH", "/", nil))

	suite.Equal(http.StatusMethodNotAllowed, suite.resp.Code)
	suite.ValidateBody(jsonSchemaError)
}

func (suite *HTTPHandlerTestSuite) TestUnknownPath() {
	suite.h.ServeHTTP(suite.resp, httptest.NewRequest("GET", "/unknown", nil))

	suite.Equal(http.StatusNotFound, suite.resp.Code)
	suite.ValidateBody(jsonSchemaError)
}

func (suite *HTTPHandlerTestSuite) TestGetSelf() {
	ipRange := mustRange("192.168.0.0", "192.168.255.255")
	result := geolib.Found(geolib.LocationRecord{CountryCode: "RU", City: "Nizhniy Novgorod"}, &ipRange)
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:5678"

	suite.datasetMock.On("Lookup", net.ParseIP("192.168.1.1")).Return(result, nil).Once()

	suite.h.ServeHTTP(suite.resp, req)

	suite.Equal(http.StatusOK, suite.resp.Code)
	suite.ValidateBody(jsonSchemaGET)
	suite.Contains(suite.resp.Body.String(), "192.168.1.1")
	suite.Contains(suite.resp.Body.String(), "RUS")
	suite.Contains(suite.resp.Body.String(), "Nizhniy Novgorod")
	suite.Contains(suite.resp.Body.String(), "192.168.255.255")
}

func (suite *HTTPHandlerTestSuite) TestGetSelfRealIP() {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:5678"
	req.Header.Set("X-Real-IP", "10.0.0.1")

	suite.datasetMock.On("Lookup", net.ParseIP("10.0.0.1")).Return(geolib.NotFound, nil).Once()

	suite.h.ServeHTTP(suite.resp, req)

	suite.Equal(http.StatusOK, suite.resp.Code)
	suite.ValidateBody(jsonSchemaGET)
	suite.Contains(suite.resp.Body.String(), `"found":false`)
}

func (suite *HTTPHandlerTestSuite) TestGetIP() {
	suite.datasetMock.
		On("Lookup", net.ParseIP("80.80.80.80")).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "DE"}, nil), nil).
		Once()

	suite.h.ServeHTTP(suite.resp, httptest.NewRequest("GET", "/ip/80.80.80.80", nil))

	suite.Equal(http.StatusOK, suite.resp.Code)
	suite.ValidateBody(jsonSchemaGET)
	suite.Contains(suite.resp.Body.String(), "Germany")
}

func (suite *HTTPHandlerTestSuite) TestGetIPMalformed() {
	suite.h.ServeHTTP(suite.resp, httptest.NewRequest("GET", "/ip/999.999.1.1", nil))

	suite.Equal(http.StatusBadRequest, suite.resp.Code)
	suite.ValidateBody(jsonSchemaError)
}

func (suite *HTTPHandlerTestSuite) TestGetStats() {
	suite.h.ServeHTTP(suite.resp, httptest.NewRequest("GET", "/stats", nil))

	suite.Equal(http.StatusOK, suite.resp.Code)
	suite.Contains(suite.resp.Body.String(), "datasetMock")
}

func (suite *HTTPHandlerTestSuite) TestGetMetrics() {
	suite.h.ServeHTTP(suite.resp, httptest.NewRequest("GET", "/metrics", nil))

	suite.Equal(http.StatusOK, suite.resp.Code)
	suite.Contains(suite.resp.Body.String(), "geoweblog_")
}

func (suite *HTTPHandlerTestSuite) TestPostIncorrectContentType() {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"ips": ["1.1.1.1"]}`))
	req.Header.Set("Content-Type", "text/plain")

	suite.h.ServeHTTP(suite.resp, req)

	suite.Equal(http.StatusUnsupportedMediaType, suite.resp.Code)
}

func (suite *HTTPHandlerTestSuite) TestPostIncorrectBody() {
	for _, v := range []string{`{}`, `{"ips": []}`, `{"ips": ["abc"]}`, `{"ips": ["1.1.1.1"], "x": 1}`, `[`} {
		resp := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/", strings.NewReader(v))
		req.Header.Set("Content-Type", "application/json")

		suite.h.ServeHTTP(resp, req)

		suite.Equal(http.StatusBadRequest, resp.Code, v)
	}
}

func (suite *HTTPHandlerTestSuite) TestPostOk() {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"ips": ["80.80.80.80", "10.0.0.1", "80.80.80.80"]}`))
	req.Header.Set("Content-Type", "application/json")

	suite.datasetMock.
		On("Lookup", net.ParseIP("80.80.80.80")).
		Return(geolib.Found(geolib.LocationRecord{CountryCode: "DE"}, nil), nil).
		Once()
	suite.datasetMock.On("Lookup", net.ParseIP("10.0.0.1")).Return(geolib.NotFound, nil).Once()

	suite.h.ServeHTTP(suite.resp, req)

	suite.Equal(http.StatusOK, suite.resp.Code)
	suite.ValidateBody(jsonSchemaPOST)

	response := struct {
		Results []struct {
			Address string `json:"address"`
			Found   bool   `json:"found"`
		} `json:"results"`
	}{}

	suite.NoError(json.Unmarshal(suite.resp.Body.Bytes(), &response))
	suite.Len(response.Results, 2)
	suite.Equal("80.80.80.80", response.Results[0].Address)
	suite.True(response.Results[0].Found)
	suite.Equal("10.0.0.1", response.Results[1].Address)
	suite.False(response.Results[1].Found)
}

func TestHTTPHandler(t *testing.T) {
	suite.Run(t, &HTTPHandlerTestSuite{})
}
