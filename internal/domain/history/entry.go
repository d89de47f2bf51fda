package history

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Entry is one routed query in the recent-queries log.
type Entry struct {
	Timestamp int64  `json:"ts"`
	Query     string `json:"query"`
	Route     string `json:"route"`
}

// NewEntry builds an entry stamped at now, truncating query to maxChars runes.
func NewEntry(now time.Time, query, routeName string, maxChars int) Entry {
	return Entry{
		Timestamp: now.Unix(),
		Query:     Truncate(query, maxChars),
		Route:     routeName,
	}
}

// Time returns the entry timestamp.
func (e Entry) Time() time.Time {
	return time.Unix(e.Timestamp, 0)
}

// Truncate cuts s to at most n runes. n <= 0 returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Encode serializes the entry for list storage.
func Encode(e Entry) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var errMalformed = errors.New("malformed history entry")

// Decode parses a stored entry. Accepts the JSON form and the older
// "ts|query|route" text form, where query may itself contain '|'.
func Decode(raw string) (Entry, error) {
	if strings.HasPrefix(raw, "{") {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Entry{}, errors.Join(errMalformed, err)
		}
		return e, nil
	}

	first := strings.IndexByte(raw, '|')
	last := strings.LastIndexByte(raw, '|')
	if first < 0 || first == last {
		return Entry{}, errMalformed
	}
	ts, err := parseTimestamp(raw[:first])
	if err != nil {
		return Entry{}, errors.Join(errMalformed, err)
	}
	return Entry{
		Timestamp: ts,
		Query:     raw[first+1 : last],
		Route:     raw[last+1:],
	}, nil
}

// parseTimestamp accepts integer or fractional unix seconds.
func parseTimestamp(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
