package weblog

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// DefaultTop is a default number of groups to return.
const DefaultTop = 15

// GroupCount is a number of records with the same key.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// GroupBy counts records by key and returns top groups sorted by count
// descending. Ties are sorted by key. Empty keys are dropped. If top is
// not positive, DefaultTop is used.
func GroupBy(records []Record, key KeyFunc, top int) []GroupCount {
	counters := map[string]int{}

	for i := range records {
		if value := key(&records[i]); value != "" {
			counters[value]++
		}
	}

	rv := make([]GroupCount, 0, len(counters))

	for k, v := range counters {
		rv = append(rv, GroupCount{Key: k, Count: v})
	}

	return topGroups(rv, top)
}

// GroupCities counts records by city. Spelling variants of the same
// city in the same country ('Nizhniy Novgorod' and 'Nizhny Novgorod')
// are grouped together by their Soundex code; the most frequent
// spelling names a group.
func GroupCities(records []Record, top int) []GroupCount {
	type cityGroup struct {
		count     int
		spellings map[string]int
	}

	groups := map[string]*cityGroup{}

	for i := range records {
		city := records[i].Location.City
		if city == "" {
			continue
		}

		key := records[i].Location.CountryCode + ":" + CityKey(city)

		group, ok := groups[key]
		if !ok {
			group = &cityGroup{spellings: map[string]int{}}
			groups[key] = group
		}

		group.count++
		group.spellings[city]++
	}

	rv := make([]GroupCount, 0, len(groups))

	for _, group := range groups {
		name := ""
		maxCount := 0

		for spelling, count := range group.spellings {
			if count > maxCount || (count == maxCount && spelling < name) {
				name = spelling
				maxCount = count
			}
		}

		rv = append(rv, GroupCount{Key: name, Count: group.count})
	}

	return topGroups(rv, top)
}

// CityKey returns Soundex codes of each word of a city name.
func CityKey(city string) string {
	words := strings.FieldsFunc(strings.ToLower(city), func(r rune) bool {
		return r < 'a' || r > 'z'
	})

	if len(words) == 0 {
		return strings.ToLower(city)
	}

	for i, v := range words {
		words[i] = smetrics.Soundex(v)
	}

	return strings.Join(words, " ")
}

func topGroups(groups []GroupCount, top int) []GroupCount {
	if top <= 0 {
		top = DefaultTop
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}

		return groups[i].Key < groups[j].Key
	})

	if len(groups) > top {
		groups = groups[:top]
	}

	return groups
}
