package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/9seconds/geoweblog/providers"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite

	dir string
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *ConfigTestSuite) Write(name, content string) string {
	path := filepath.Join(suite.dir, name)

	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ConfigTestSuite) TestHJSON() {
	path := suite.Write("config.hjson", `
	{
		# comments are fine
		listen: 0.0.0.0:9000
		worker_pool_size: 16
		proxy_protocol: true
		basic_auth: {
			user: admin
			password: secret
		}
		datasets: [
			{
				path: "/data/IP2LOCATION-LITE-DB11.BIN.gz"
				cache_items: 1000
				cache_ttl: 1m
			}
			{
				name: ranges
				path: "/data/ranges.csv"
				watch: true
			}
		]
		weblog: {
			clientip: client_ip
		}
		export: {
			host: splunk.local
			output_type: json
			timeout: 30s
		}
	}
	`)

	conf, err := parseConfig(path)

	suite.Require().NoError(err)
	suite.Equal("0.0.0.0:9000", conf.GetListen())
	suite.Equal(16, conf.GetWorkerPoolSize())
	suite.True(conf.ProxyProtocol)
	suite.True(conf.BasicAuth.Enabled())
	suite.Len(conf.GetDatasets(), 2)

	suite.Equal(providers.NameIP2Bin, conf.Datasets[0].GetKind())
	suite.Equal(providers.NameIP2Bin, conf.Datasets[0].GetName())
	suite.EqualValues(1000, conf.Datasets[0].CacheItems)
	suite.Equal(time.Minute, conf.Datasets[0].GetCacheTTL())

	suite.Equal(providers.NameCSV, conf.Datasets[1].GetKind())
	suite.Equal("ranges", conf.Datasets[1].GetName())
	suite.True(conf.Datasets[1].Watch)
	suite.Equal(DefaultCacheTTL, conf.Datasets[1].GetCacheTTL())

	suite.Equal("client_ip", conf.Weblog.ClientIP)
	suite.Equal("json", conf.Export.GetOutputType())
	suite.Equal(DefaultExportDirectory, conf.Export.GetDirectory())
	suite.Equal(30*time.Second, conf.Export.GetClientOptions().Timeout)
}

func (suite *ConfigTestSuite) TestTOML() {
	path := suite.Write("config.toml", `
listen = "127.0.0.1:9000"

[[datasets]]
kind = "mmdb"
path = "/data/GeoLite2-City.mmdb"
cache_ttl = "5m"

[export]
saved_search = "webserver_logging_search"
`)

	conf, err := parseConfig(path)

	suite.Require().NoError(err)
	suite.Equal("127.0.0.1:9000", conf.GetListen())
	suite.Len(conf.GetDatasets(), 1)
	suite.Equal(providers.NameMMDB, conf.Datasets[0].GetName())
	suite.Equal(5*time.Minute, conf.Datasets[0].GetCacheTTL())
	suite.Equal("webserver_logging_search", conf.Export.SavedSearch)
	suite.Equal(DefaultExportOutput, conf.Export.GetOutputType())
}

func (suite *ConfigTestSuite) TestDefaults() {
	conf, err := parseConfig(suite.Write("config.json", `{}`))

	suite.Require().NoError(err)
	suite.Equal(DefaultListen, conf.GetListen())
	suite.Equal(0, conf.GetWorkerPoolSize())
	suite.False(conf.BasicAuth.Enabled())
	suite.Error(conf.requireDatasets())
}

func (suite *ConfigTestSuite) TestErrors() {
	testData := map[string]string{
		"listen":      `{"listen": "localhost"}`,
		"duplicate":   `{"datasets": [{"path": "a.bin"}, {"path": "b.bin"}]}`,
		"kind":        `{"datasets": [{"path": "a.txt"}]}`,
		"path":        `{"datasets": [{"kind": "csv"}]}`,
		"duration":    `{"datasets": [{"path": "a.bin", "cache_ttl": 10}]}`,
		"output_type": `{"export": {"output_type": "pdf"}}`,
		"syntax":      `{"datasets": [`,
	}

	for k, v := range testData {
		_, err := parseConfig(suite.Write(k+".hjson", v))

		suite.Error(err, k)
	}
}

func (suite *ConfigTestSuite) TestAbsentFile() {
	_, err := parseConfig(filepath.Join(suite.dir, "nothing.hjson"))

	suite.Error(err)
}

func TestConfig(t *testing.T) {
	suite.Run(t, &ConfigTestSuite{})
}
