package geolib

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"
)

const httpPostMaxBodySize = 1 << 20

var handlePostRequestJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "required": [
            "ips"
        ],
        "additionalProperties": false,
        "properties": {
            "ips": {
                "type": "array",
                "minItems": 1,
                "maxItems": 4096,
                "items": {
                    "anyOf": [
                        {
                            "type": "string",
                            "format": "ipv4",
                            "minLength": 7,
                            "maxLength": 15
                        },
                        {
                            "type": "string",
                            "format": "ipv6",
                            "minLength": 2,
                            "maxLength": 39
                        }
                    ]
                }
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type handlePostRequest struct {
	IPs []string `json:"ips"`
}

type handlePostResponse struct {
	Results []Enrichment `json:"results"`
}

func (h httpHandler) handlePost(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		h.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(req.Body, httpPostMaxBodySize))

	req.Body.Close()

	if err != nil {
		h.sendError(w, err, "Cannot read request body", http.StatusBadRequest)

		return
	}

	errs, err := handlePostRequestJSONSchema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		h.sendError(w, err, "Cannot validate body", http.StatusBadRequest)

		return
	}

	if len(errs) > 0 {
		h.sendError(w, errs[0], "Invalid request body", http.StatusBadRequest)

		return
	}

	parsedRequest := &handlePostRequest{}
	if err := json.Unmarshal(bodyBytes, parsedRequest); err != nil {
		h.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	enriched, err := h.enricher.EnrichAll(req.Context(), handlePostUniqueIPs(parsedRequest.IPs))
	if err != nil {
		h.sendError(w, err, "Cannot enrich given IPs", http.StatusInternalServerError)

		return
	}

	h.sendJSON(w, handlePostResponse{Results: enriched})
}

// handlePostUniqueIPs drops duplicates keeping an order of first
// occurrences.
func handlePostUniqueIPs(ips []string) []string {
	seen := map[string]bool{}
	rv := make([]string, 0, len(ips))

	for _, v := range ips {
		v = strings.TrimSpace(v)

		if !seen[v] {
			seen[v] = true
			rv = append(rv, v)
		}
	}

	return rv
}
