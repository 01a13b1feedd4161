package result

import (
	"fmt"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/goadapp/proxybench/api"
	"github.com/goadapp/proxybench/bench/util"
)

const (
	histogramMin     = 1
	histogramMax     = int64(time.Hour / time.Microsecond)
	histogramSigFigs = 3
)

// Percentiles of the total request duration.
type Percentiles struct {
	P50 time.Duration `json:"p50"`
	P90 time.Duration `json:"p90"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

// AggregateStats summarises one batch.
type AggregateStats struct {
	Requested   int               `json:"requested"`
	Completed   int               `json:"completed"`
	Successful  int               `json:"successful"`
	Failed      int               `json:"failed"`
	Average     api.RequestTiming `json:"average"`
	TotalBytes  int64             `json:"total-bytes"`
	StatusCodes []int             `json:"status-codes"`
	Statuses    map[int]int       `json:"statuses"`
	Fastest     time.Duration     `json:"fastest"`
	Slowest     time.Duration     `json:"slowest"`
	Percentiles Percentiles       `json:"percentiles"`
}

// Aggregate reduces the completed results of a batch of requested attempts.
// It does not modify results and does not depend on their order. With no
// results every average is zero.
func Aggregate(results []api.BenchmarkResult, requested int) AggregateStats {
	stats := AggregateStats{
		Requested:   requested,
		Completed:   len(results),
		StatusCodes: make([]int, 0),
		Statuses:    make(map[int]int),
	}
	if stats.Requested < stats.Completed {
		stats.Requested = stats.Completed
	}
	stats.Failed = stats.Requested - stats.Completed
	if stats.Completed == 0 {
		return stats
	}

	var sum api.RequestTiming
	var tlsSum time.Duration
	tlsCount := 0
	histogram := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	stats.Fastest = results[0].Timing.Total

	for _, r := range results {
		if r.Status == 200 {
			stats.Successful++
		}
		stats.Statuses[r.Status]++
		stats.TotalBytes += r.BodySize

		t := r.Timing
		sum.DNSLookup += t.DNSLookup
		sum.TCPConnect += t.TCPConnect
		sum.TimeToFirstByte += t.TimeToFirstByte
		sum.Download += t.Download
		sum.Total += t.Total
		if t.TLSHandshake != nil {
			tlsSum += *t.TLSHandshake
			tlsCount++
		}

		if t.Total < stats.Fastest {
			stats.Fastest = t.Total
		}
		if t.Total > stats.Slowest {
			stats.Slowest = t.Total
		}
		histogram.RecordValue(clamp(int64(t.Total / time.Microsecond)))
	}

	stats.Average = api.RequestTiming{
		DNSLookup:       average(sum.DNSLookup, stats.Completed),
		TCPConnect:      average(sum.TCPConnect, stats.Completed),
		TimeToFirstByte: average(sum.TimeToFirstByte, stats.Completed),
		Download:        average(sum.Download, stats.Completed),
		Total:           average(sum.Total, stats.Completed),
	}
	if tlsCount > 0 {
		stats.Average.TLSHandshake = api.Duration(average(tlsSum, tlsCount))
	}
	stats.StatusCodes = util.SortedKeys(stats.Statuses)
	stats.Percentiles = Percentiles{
		P50: quantile(histogram, 50),
		P90: quantile(histogram, 90),
		P95: quantile(histogram, 95),
		P99: quantile(histogram, 99),
	}
	return stats
}

// SuccessRate is the share of requested attempts that returned 200.
func (s AggregateStats) SuccessRate() float64 {
	if s.Requested == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Requested)
}

func (s AggregateStats) String() string {
	return fmt.Sprintf("%d/%d completed, %d successful, avg %s, %d bytes, statuses %v",
		s.Completed, s.Requested, s.Successful, s.Average.Total, s.TotalBytes, s.StatusCodes)
}

func average(sum time.Duration, count int) time.Duration {
	if count == 0 {
		return 0
	}
	return sum / time.Duration(count)
}

func quantile(h *hdrhistogram.Histogram, q float64) time.Duration {
	return time.Duration(h.ValueAtQuantile(q)) * time.Microsecond
}

func clamp(v int64) int64 {
	if v < histogramMin {
		return histogramMin
	}
	if v > histogramMax {
		return histogramMax
	}
	return v
}
