package api

import (
	"net/url"
	"strconv"
)

// params accumulates query parameters, skipping zero values.
type params url.Values

func (p params) str(key, v string) params {
	if v != "" {
		url.Values(p).Add(key, v)
	}
	return p
}

func (p params) strs(key string, vs []string) params {
	for _, v := range vs {
		p.str(key, v)
	}
	return p
}

func (p params) int64(key string, v int64) params {
	if v != 0 {
		url.Values(p).Add(key, strconv.FormatInt(v, 10))
	}
	return p
}

func (p params) int(key string, v int) params {
	return p.int64(key, int64(v))
}

func (p params) boolean(key string, v *bool) params {
	if v != nil {
		url.Values(p).Add(key, strconv.FormatBool(*v))
	}
	return p
}

func (p params) values() url.Values {
	if len(p) == 0 {
		return nil
	}
	return url.Values(p)
}

// Page selects one page of a paginated listing. Zero values use server defaults.
type Page struct {
	No   int `json:"no,omitempty"`
	Size int `json:"size,omitempty"`
}

// TimeRange bounds a query in unix seconds. Zero values use server defaults.
type TimeRange struct {
	StartTime int64
	EndTime   int64
}

// Validate rejects an inverted range.
func (r TimeRange) Validate() error {
	if r.StartTime != 0 && r.EndTime != 0 && r.EndTime < r.StartTime {
		return errInvertedRange
	}
	return nil
}

func (r TimeRange) apply(p params) params {
	return p.int64("startTime", r.StartTime).int64("endTime", r.EndTime)
}

// ConnectionFilter narrows a query to providers and connections.
type ConnectionFilter struct {
	Connector       []string
	ConnectionID    []string
	ConnectionGroup []string
}

func (f ConnectionFilter) apply(p params) params {
	return p.strs("connector", f.Connector).
		strs("connectionId", f.ConnectionID).
		strs("connectionGroup", f.ConnectionGroup)
}
