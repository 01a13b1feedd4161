package result

import (
	"math/rand"
	"testing"
	"time"

	"github.com/goadapp/proxybench/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedResult(status int) api.BenchmarkResult {
	return api.BenchmarkResult{
		Status:   status,
		BodySize: 1000,
		Timing: api.RequestTiming{
			TCPConnect:      20 * time.Millisecond,
			TimeToFirstByte: 5 * time.Millisecond,
			Download:        50 * time.Millisecond,
			Total:           100 * time.Millisecond,
		},
	}
}

func TestAggregateEmpty(t *testing.T) {
	assert := assert.New(t)
	stats := Aggregate(nil, 10)
	assert.Equal(10, stats.Requested)
	assert.Equal(0, stats.Completed)
	assert.Equal(0, stats.Successful)
	assert.Equal(10, stats.Failed)
	assert.Equal(api.RequestTiming{}, stats.Average)
	assert.Equal(int64(0), stats.TotalBytes)
	assert.Empty(stats.StatusCodes)
	assert.Equal(time.Duration(0), stats.Fastest)
	assert.Equal(Percentiles{}, stats.Percentiles)
	assert.Equal(float64(0), stats.SuccessRate())

	zero := Aggregate([]api.BenchmarkResult{}, 0)
	assert.Equal(0, zero.Failed)
	assert.Equal(float64(0), zero.SuccessRate())
}

func TestAggregateIdenticalResults(t *testing.T) {
	x := 37*time.Millisecond + 123*time.Nanosecond
	r := api.BenchmarkResult{
		Status:   200,
		BodySize: 7,
		Timing: api.RequestTiming{
			DNSLookup:       x,
			TCPConnect:      x,
			TLSHandshake:    api.Duration(x),
			TimeToFirstByte: x,
			Download:        x,
			Total:           x,
		},
	}
	for _, n := range []int{1, 3, 7, 1000} {
		results := make([]api.BenchmarkResult, n)
		for i := range results {
			results[i] = r
		}
		avg := Aggregate(results, n).Average
		assert.Equal(t, x, avg.DNSLookup)
		assert.Equal(t, x, avg.TCPConnect)
		require.NotNil(t, avg.TLSHandshake)
		assert.Equal(t, x, *avg.TLSHandshake)
		assert.Equal(t, x, avg.TimeToFirstByte)
		assert.Equal(t, x, avg.Download)
		assert.Equal(t, x, avg.Total)
	}
}

func TestAggregateFixedScenario(t *testing.T) {
	assert := assert.New(t)
	results := make([]api.BenchmarkResult, 10)
	for i := range results {
		results[i] = fixedResult(200)
	}
	stats := Aggregate(results, 10)
	assert.Equal(10, stats.Completed)
	assert.Equal(10, stats.Successful)
	assert.Equal(0, stats.Failed)
	assert.Equal(100*time.Millisecond, stats.Average.Total)
	assert.Equal(20*time.Millisecond, stats.Average.TCPConnect)
	assert.Equal(5*time.Millisecond, stats.Average.TimeToFirstByte)
	assert.Equal(50*time.Millisecond, stats.Average.Download)
	assert.Nil(stats.Average.TLSHandshake)
	assert.Equal(int64(10000), stats.TotalBytes)
	assert.Equal([]int{200}, stats.StatusCodes)
	assert.Equal(float64(1), stats.SuccessRate())
}

func TestAggregateStatuses(t *testing.T) {
	results := []api.BenchmarkResult{fixedResult(502), fixedResult(200), fixedResult(404), fixedResult(200)}
	stats := Aggregate(results, 6)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, []int{200, 404, 502}, stats.StatusCodes)
	assert.Equal(t, map[int]int{200: 2, 404: 1, 502: 1}, stats.Statuses)
}

func TestAggregateOrderIndependent(t *testing.T) {
	results := make([]api.BenchmarkResult, 50)
	for i := range results {
		r := fixedResult(200 + i%3)
		r.Timing.Total = time.Duration(i+1) * time.Millisecond
		if i%2 == 0 {
			r.Timing.TLSHandshake = api.Duration(time.Duration(i) * time.Microsecond)
		}
		r.BodySize = int64(i)
		results[i] = r
	}
	expected := Aggregate(results, 60)

	shuffled := make([]api.BenchmarkResult, len(results))
	copy(shuffled, results)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	assert.Equal(t, expected, Aggregate(shuffled, 60))
	assert.Equal(t, time.Millisecond, expected.Fastest)
	assert.Equal(t, 50*time.Millisecond, expected.Slowest)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	results := []api.BenchmarkResult{fixedResult(200), fixedResult(500)}
	before := make([]api.BenchmarkResult, len(results))
	copy(before, results)
	Aggregate(results, 2)
	assert.Equal(t, before, results)
}

func TestAggregateTLSAverageOnlyOverSecureResults(t *testing.T) {
	secure := fixedResult(200)
	secure.Timing.TLSHandshake = api.Duration(30 * time.Millisecond)
	stats := Aggregate([]api.BenchmarkResult{secure, fixedResult(200)}, 2)
	require.NotNil(t, stats.Average.TLSHandshake)
	assert.Equal(t, 30*time.Millisecond, *stats.Average.TLSHandshake)
}

func TestAggregateClampsRequested(t *testing.T) {
	stats := Aggregate([]api.BenchmarkResult{fixedResult(200), fixedResult(200)}, 1)
	assert.Equal(t, 2, stats.Requested)
	assert.Equal(t, 0, stats.Failed)
}

func TestAggregatePercentiles(t *testing.T) {
	results := make([]api.BenchmarkResult, 100)
	for i := range results {
		r := fixedResult(200)
		r.Timing.Total = time.Duration(i+1) * time.Millisecond
		results[i] = r
	}
	p := Aggregate(results, 100).Percentiles
	assert.InDelta(t, float64(50*time.Millisecond), float64(p.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(90*time.Millisecond), float64(p.P90), float64(time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(p.P99), float64(time.Millisecond))
	assert.True(t, p.P50 <= p.P90 && p.P90 <= p.P95 && p.P95 <= p.P99)
}
