package executor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/goadapp/proxybench/api"
)

// ttfbRatio is the fixed share of the download interval reported as time to
// first byte. It is an estimate; no first-byte timer is taken.
const ttfbRatio = 10

// Doer is the part of *http.Client the executor depends on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds everything needed to build an Executor.
type Config struct {
	URL       string
	Proxy     string
	Timeout   time.Duration
	Headers   [][2]string
	UserAgent string
	// MaxConns sizes the idle connection pool, normally the concurrency.
	MaxConns int
}

// Executor performs single GET requests against one target URL through one
// proxy. It is safe for concurrent use: the shared client and its connection
// pool are never mutated after New returns.
type Executor struct {
	client    Doer
	url       string
	secure    bool
	headers   [][2]string
	userAgent string
	now       func() time.Time
}

// New builds an Executor without touching the network.
func New(config Config) (*Executor, error) {
	target, err := url.Parse(config.URL)
	if err != nil {
		return nil, &ConfigError{Op: "parse url", Err: err}
	}
	proxyURL, err := ParseProxy(config.Proxy)
	if err != nil {
		return nil, err
	}
	transport, err := newTransport(proxyURL, config.Timeout, config.MaxConns)
	if err != nil {
		return nil, err
	}
	return &Executor{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		url:       config.URL,
		secure:    strings.EqualFold(target.Scheme, "https"),
		headers:   config.Headers,
		userAgent: config.UserAgent,
		now:       time.Now,
	}, nil
}

// Execute runs one full request/response cycle and never retries.
//
// Only the header wait, the body drain and the total are timed. The header
// wait covers proxy negotiation, connection setup and any TLS handshake as
// one lump which is then split by EstimatePhases.
func (e *Executor) Execute(ctx context.Context) (api.BenchmarkResult, error) {
	start := e.now()

	var remoteAddr string
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Conn != nil {
				remoteAddr = info.Conn.RemoteAddr().String()
			}
		},
	}
	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, e.url, nil)
	if err != nil {
		return api.BenchmarkResult{}, newExecutionError(Connection, err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	for _, h := range e.headers {
		req.Header.Add(h[0], h[1])
	}
	sent := e.now()

	resp, err := e.client.Do(req)
	if err != nil {
		return api.BenchmarkResult{}, newExecutionError(Connection, err)
	}
	defer resp.Body.Close()
	headersAt := e.now()

	result := api.BenchmarkResult{
		Status:  resp.StatusCode,
		Headers: resp.Header.Clone(),
		URL:     e.url,
		Proto:   resp.Proto,
	}
	if resp.ContentLength >= 0 {
		contentLength := resp.ContentLength
		result.ContentLength = &contentLength
	}
	if resp.Request != nil && resp.Request.URL != nil {
		result.URL = resp.Request.URL.String()
	}

	bodySize, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return api.BenchmarkResult{}, newExecutionError(BodyRead, err)
	}
	end := e.now()

	result.BodySize = bodySize
	result.RemoteAddr = remoteAddr
	result.Timing = EstimatePhases(e.secure, headersAt.Sub(sent), end.Sub(headersAt))
	result.Timing.DNSLookup = sent.Sub(start)
	result.Timing.Total = end.Sub(start)
	return result, nil
}

// EstimatePhases splits the measured header wait and download intervals into
// phases. Time to first byte is download/10. For secure targets the connect
// lump is split evenly between TCP connect and TLS handshake; otherwise it is
// all TCP connect and no TLS value is set.
func EstimatePhases(secure bool, connect, download time.Duration) api.RequestTiming {
	timing := api.RequestTiming{
		TCPConnect:      connect,
		TimeToFirstByte: download / ttfbRatio,
		Download:        download,
	}
	if secure {
		timing.TCPConnect = connect / 2
		timing.TLSHandshake = api.Duration(connect / 2)
	}
	return timing
}
