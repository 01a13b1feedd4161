package types

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	MAX_REQUEST_COUNT = math.MaxInt32
	MAX_CONCURRENCY   = 25000

	DefaultURL         = "https://wtfismyip.com/text"
	DefaultRequests    = 1000
	DefaultConcurrency = 100
	DefaultTimeout     = 5
	DefaultRegion      = "us-east-1"
)

var supportedRegions = []string{
	"us-east-1",      // N. Virginia
	"us-east-2",      // Ohio
	"us-west-1",      // N.California
	"us-west-2",      // Oregon
	"eu-west-1",      // Ireland
	"eu-central-1",   // Frankfurt
	"ap-northeast-1", // Tokyo
	"ap-northeast-2", // Seoul
	"ap-southeast-1", // Singapore
	"ap-southeast-2", // Sydney
	"sa-east-1",      // Sao Paulo
}

// TestConfig type
type TestConfig struct {
	URL         string
	Proxy       string
	Requests    int
	Concurrency int
	Timeout     int
	Headers     []string
	Output      string
	Publish     string
	Region      string
	Live        bool
	Settings    string
}

// NewTestConfig returns a TestConfig holding the default values.
func NewTestConfig() *TestConfig {
	return &TestConfig{
		URL:         DefaultURL,
		Requests:    DefaultRequests,
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		Region:      DefaultRegion,
	}
}

func (c *TestConfig) Check() error {
	if c.Proxy == "" {
		return errors.New("Missing proxy address")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Wrapf(err, "Invalid URL %q", c.URL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("Invalid URL %q (use http:// or https://)", c.URL)
	}
	if c.Concurrency < 1 || c.Concurrency > MAX_CONCURRENCY {
		return fmt.Errorf("Invalid concurrency (use 1 - %d)", MAX_CONCURRENCY)
	}
	if c.Requests < 0 || c.Requests > MAX_REQUEST_COUNT {
		return fmt.Errorf("Invalid total requests (use 0 - %d)", MAX_REQUEST_COUNT)
	}
	if c.Timeout < 1 || c.Timeout > 100 {
		return errors.New("Invalid timeout (1s - 100s)")
	}
	if strings.HasPrefix(c.Publish, "sqs://") {
		supportedRegionFound := false
		for _, supported := range supportedRegions {
			if c.Region == supported {
				supportedRegionFound = true
			}
		}
		if !supportedRegionFound {
			return fmt.Errorf("Unsupported region: %s. Supported regions are: %s.", c.Region, strings.Join(supportedRegions, ", "))
		}
	}
	for _, v := range c.Headers {
		header := strings.SplitN(v, ":", 2)
		if len(header) < 2 || strings.TrimSpace(header[0]) == "" {
			return fmt.Errorf("Header %s not valid. Make sure your header is of the form \"Header: value\"", v)
		}
	}
	return nil
}

// HeaderPairs splits the configured "Name: value" headers.
func (c *TestConfig) HeaderPairs() [][2]string {
	pairs := make([][2]string, 0, len(c.Headers))
	for _, v := range c.Headers {
		header := strings.SplitN(v, ":", 2)
		if len(header) < 2 {
			continue
		}
		pairs = append(pairs, [2]string{strings.TrimSpace(header[0]), strings.TrimSpace(header[1])})
	}
	return pairs
}
