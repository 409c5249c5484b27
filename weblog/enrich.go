package weblog

import (
	"context"
	"fmt"

	"github.com/9seconds/geoweblog/geolib"
)

// EnrichChunkSize is a number of unique addresses sent to enricher at
// once.
const EnrichChunkSize = 4096

// Enricher resolves batches of addresses. *geolib.Enricher satisfies
// it.
type Enricher interface {
	EnrichAll(context.Context, []string) ([]geolib.Enrichment, error)
}

// EnrichStats tells how many records were located.
type EnrichStats struct {
	Unique   int `json:"unique_addresses"`
	Located  int `json:"located"`
	NotFound int `json:"not_found"`
	Invalid  int `json:"invalid"`
}

// EnrichRecords fills locations of records in place. Each unique
// address is resolved only once. Malformed and unknown addresses keep
// an empty location with Located set to false.
func EnrichRecords(ctx context.Context, enricher Enricher, records []Record) (EnrichStats, error) {
	stats := EnrichStats{}
	indexes := map[string][]int{}
	addresses := []string{}

	for i := range records {
		address := records[i].ClientIP

		if _, ok := indexes[address]; !ok {
			addresses = append(addresses, address)
		}

		indexes[address] = append(indexes[address], i)
	}

	stats.Unique = len(addresses)

	for start := 0; start < len(addresses); start += EnrichChunkSize {
		end := start + EnrichChunkSize
		if end > len(addresses) {
			end = len(addresses)
		}

		results, err := enricher.EnrichAll(ctx, addresses[start:end])
		if err != nil {
			return stats, fmt.Errorf("cannot enrich addresses: %w", err)
		}

		for _, result := range results {
			switch {
			case result.IP == nil:
				stats.Invalid++
			case !result.OK():
				stats.NotFound++
			default:
				stats.Located++
			}

			for _, idx := range indexes[result.Address] {
				records[idx].Location = result.Location
				records[idx].Located = result.OK()
			}
		}
	}

	return stats, nil
}
