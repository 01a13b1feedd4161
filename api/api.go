package api

import (
	"net/http"
	"time"
)

// RequestTiming breaks one request attempt into phases. Total is measured
// wall-clock time; the other phases are partly estimated, see the executor
// package for the policy.
type RequestTiming struct {
	DNSLookup       time.Duration  `json:"dns-lookup"`
	TCPConnect      time.Duration  `json:"tcp-connect"`
	TLSHandshake    *time.Duration `json:"tls-handshake,omitempty"`
	TimeToFirstByte time.Duration  `json:"time-to-first-byte"`
	Download        time.Duration  `json:"download"`
	Total           time.Duration  `json:"total"`
}

// BenchmarkResult is produced for every request attempt that completed.
type BenchmarkResult struct {
	Status        int           `json:"status"`
	Timing        RequestTiming `json:"timing"`
	BodySize      int64         `json:"body-size"`
	Headers       http.Header   `json:"headers,omitempty"`
	ContentLength *int64        `json:"content-length,omitempty"`
	RemoteAddr    string        `json:"remote-addr,omitempty"`
	URL           string        `json:"url"`
	Proto         string        `json:"proto"`
}

// Progress is a snapshot of a running batch, sent after every attempt.
type Progress struct {
	Requested int `json:"requested"`
	Done      int `json:"done"`
	Failed    int `json:"failed"`
}

// Finished reports whether every scheduled attempt has reached a terminal
// state.
func (p Progress) Finished() bool {
	return p.Done >= p.Requested
}

// Duration returns a pointer to d, for optional timing fields.
func Duration(d time.Duration) *time.Duration {
	return &d
}
