package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/9seconds/geoweblog/export"
	"github.com/9seconds/geoweblog/geolib"
	"github.com/9seconds/geoweblog/providers"
	"github.com/9seconds/geoweblog/weblog"
	"github.com/BurntSushi/toml"
	"github.com/hjson/hjson-go/v4"
)

const (
	DefaultListen          = "127.0.0.1:8080"
	DefaultCacheTTL        = 10 * time.Minute
	DefaultExportDirectory = "data"
	DefaultExportOutput    = "csv"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen         string          `json:"listen"`
	ProxyProtocol  bool            `json:"proxy_protocol"`
	WorkerPoolSize uint            `json:"worker_pool_size"`
	BasicAuth      configBasicAuth `json:"basic_auth"`
	Datasets       []configDataset `json:"datasets"`
	Weblog         weblog.Columns  `json:"weblog"`
	Export         configExport    `json:"export"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetWorkerPoolSize() int {
	return int(c.WorkerPoolSize)
}

func (c config) GetDatasets() []configDataset {
	return c.Datasets
}

type configBasicAuth struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (c configBasicAuth) Enabled() bool {
	return c.User != "" || c.Password != ""
}

type configDataset struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Path       string   `json:"path"`
	CacheItems uint     `json:"cache_items"`
	CacheTTL   duration `json:"cache_ttl"`
	Watch      bool     `json:"watch"`
}

func (c configDataset) GetKind() string {
	if c.Kind != "" {
		return c.Kind
	}

	return providers.DetectKind(c.Path)
}

func (c configDataset) GetName() string {
	if c.Name != "" {
		return c.Name
	}

	return c.GetKind()
}

func (c configDataset) GetCacheTTL() time.Duration {
	if c.CacheTTL.Duration == 0 {
		return DefaultCacheTTL
	}

	return c.CacheTTL.Duration
}

type configExport struct {
	Host               string   `json:"host"`
	User               string   `json:"user"`
	App                string   `json:"app"`
	SavedSearch        string   `json:"saved_search"`
	Directory          string   `json:"directory"`
	OutputType         string   `json:"output_type"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify"`
	Timeout            duration `json:"timeout"`
	RateLimitInterval  duration `json:"rate_limit_interval"`
	RateLimitBurst     uint     `json:"rate_limit_burst"`
}

func (c configExport) GetDirectory() string {
	if c.Directory != "" {
		return c.Directory
	}

	return DefaultExportDirectory
}

func (c configExport) GetOutputType() string {
	if c.OutputType != "" {
		return c.OutputType
	}

	return DefaultExportOutput
}

func (c configExport) GetClientOptions() export.ClientOptions {
	return export.ClientOptions{
		UserAgent:          "geoweblog/" + version,
		Timeout:            c.Timeout.Duration,
		InsecureSkipVerify: c.InsecureSkipVerify,
		RateLimitInterval:  c.RateLimitInterval.Duration,
		RateLimitBurst:     int(c.RateLimitBurst),
	}
}

// decodeConfig converts a raw document into a map. Files with .toml
// extension are TOML, everything else is HJSON which is a superset of
// JSON.
func decodeConfig(path string, content []byte) (map[string]interface{}, error) {
	rawMap := map[string]interface{}{}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(content, &rawMap); err != nil {
			return nil, fmt.Errorf("cannot parse toml: %w", err)
		}

		return rawMap, nil
	}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}

	return rawMap, nil
}

func parseConfig(path string) (*config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	rawMap, err := decodeConfig(path, content)
	if err != nil {
		return nil, err
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot convert config: %w", err)
	}

	conf := config{}

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config: %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *config) validate() error {
	if _, _, err := net.SplitHostPort(c.GetListen()); err != nil {
		return fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	if c.Export.OutputType != "" {
		if err := export.ValidateOutputType(c.Export.OutputType); err != nil {
			return fmt.Errorf("incorrect export config: %w", err)
		}
	}

	seenNames := map[string]struct{}{}
	kinds := providers.Kinds()

	for i, v := range c.Datasets {
		if v.Path == "" {
			return fmt.Errorf("path of dataset %d is not defined", i)
		}

		if !containsString(kinds, v.GetKind()) {
			return fmt.Errorf("dataset %s has unknown kind %q, known kinds are: %s",
				v.Path, v.GetKind(), strings.Join(kinds, ", "))
		}

		if _, ok := seenNames[v.GetName()]; ok {
			return fmt.Errorf("name %s is duplicated", v.GetName())
		}

		seenNames[v.GetName()] = struct{}{}
	}

	return nil
}

func (c *config) requireDatasets() error {
	if len(c.Datasets) == 0 {
		return geolib.NewDatasetLoadError("", fmt.Errorf("no datasets are configured"))
	}

	return nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
