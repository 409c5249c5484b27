package geolib

import (
	"encoding/json"
	"sync"
	"time"
)

// UsageStats tracks how a dataset is used by Enricher.
type UsageStats struct {
	Name string

	mutex         sync.Mutex
	lastUpdated   time.Time
	lastUsed      time.Time
	foundCount    uint64
	notFoundCount uint64
	failureCount  uint64
}

// Used registers a lookup outcome.
func (u *UsageStats) Used(result LookupResult, err error) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	switch {
	case err != nil:
		u.failureCount++
	case result.OK():
		u.foundCount++
	default:
		u.notFoundCount++
	}
}

// Updated registers that dataset was (re)loaded.
func (u *UsageStats) Updated() {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUpdated = now
}

// LastUpdated returns a time of the latest (re)load.
func (u *UsageStats) LastUpdated() time.Time {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	return u.lastUpdated
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUpdatedTime, lastUsedTime int64

	u.mutex.Lock()

	if !u.lastUpdated.IsZero() {
		lastUpdatedTime = u.lastUpdated.Unix()
	}

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	rawStruct := struct {
		Name          string `json:"name"`
		LastUpdated   int64  `json:"last_updated"`
		LastUsed      int64  `json:"last_used"`
		FoundCount    uint64 `json:"found_count"`
		NotFoundCount uint64 `json:"not_found_count"`
		FailureCount  uint64 `json:"failure_count"`
	}{
		Name:          u.Name,
		LastUpdated:   lastUpdatedTime,
		LastUsed:      lastUsedTime,
		FoundCount:    u.foundCount,
		NotFoundCount: u.notFoundCount,
		FailureCount:  u.failureCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}
