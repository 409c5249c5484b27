package export

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// DefaultSplunkPort is a port of Splunk management REST API.
const DefaultSplunkPort = 8089

// OutputTypes are output modes supported by Splunk export endpoint.
var OutputTypes = []string{"csv", "json", "raw", "xml"}

// ValidateOutputType checks if Splunk can export results in a given
// format.
func ValidateOutputType(outputType string) error {
	for _, v := range OutputTypes {
		if v == outputType {
			return nil
		}
	}

	return fmt.Errorf("%w %q, valid types are: %s",
		ErrUnsupportedOutput, outputType, strings.Join(OutputTypes, ", "))
}

// Splunk downloads results of saved searches.
type Splunk struct {
	Client HTTPClient

	// Host is a hostname of Splunk server. A port can be given,
	// otherwise DefaultSplunkPort is used.
	Host string

	// User is an owner of saved search.
	User        string
	App         string
	SavedSearch string

	Username string
	Password string
}

// URL returns an address of job export endpoint.
func (s *Splunk) URL(outputType string) string {
	host := s.Host
	if host == "" {
		host = "localhost"
	}

	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, strconv.Itoa(DefaultSplunkPort))
	}

	rv := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/servicesNS/" + url.PathEscape(s.User) + "/" + url.PathEscape(s.App) + "/search/jobs/export",
		RawQuery: url.Values{"output_mode": {outputType}}.Encode(),
	}

	return rv.String()
}

// Search returns SPL query which loads results of saved search.
func (s *Splunk) Search() string {
	return "loadjob savedsearch=" + s.User + ":" + s.App + ":" + s.SavedSearch
}

// Download exports results of saved search into {dir}/{name}.{type}.
// Directory is created if absent. Returns a path of written file.
func (s *Splunk) Download(ctx context.Context, fs afero.Fs, dir, name, outputType string) (string, error) {
	if err := ValidateOutputType(outputType); err != nil {
		return "", err
	}

	if name == "" {
		name = s.SavedSearch
	}

	form := url.Values{"search": {s.Search()}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL(outputType), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.Username, s.Password)

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create directory %s: %w", dir, err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot download %s: %w", s.SavedSearch, err)
	}

	defer closeResponse(resp)

	path := filepath.Join(dir, name+"."+outputType)
	tmpPath := path + ".tmp"

	file, err := fs.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("cannot create %s: %w", tmpPath, err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		fs.Remove(tmpPath) // nolint: errcheck

		return "", fmt.Errorf("cannot write %s: %w", tmpPath, err)
	}

	if err := file.Close(); err != nil {
		fs.Remove(tmpPath) // nolint: errcheck

		return "", fmt.Errorf("cannot close %s: %w", tmpPath, err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("cannot move %s to %s: %w", tmpPath, path, err)
	}

	return path, nil
}
