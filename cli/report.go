package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Songmu/prompter"
	humanize "github.com/dustin/go-humanize"
	"github.com/goadapp/proxybench"
	"github.com/goadapp/proxybench/bench/types"
	"github.com/goadapp/proxybench/queue"
	"github.com/goadapp/proxybench/result"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const headerFormat = "%-24s%s\n"

func printSummary(w io.Writer, config *types.TestConfig, report proxybench.Report) {
	stats := report.Stats
	avg := stats.Average
	fmt.Fprintf(w, "\nBenchmark of %s via %s\n\n", config.URL, config.Proxy)
	fmt.Fprintf(w, headerFormat, "Completed:", fmt.Sprintf("%s/%s", humanize.Comma(int64(stats.Completed)), humanize.Comma(int64(stats.Requested))))
	fmt.Fprintf(w, headerFormat, "Successful:", fmt.Sprintf("%s (%.1f%%)", humanize.Comma(int64(stats.Successful)), stats.SuccessRate()*100))
	fmt.Fprintf(w, headerFormat, "Failed:", humanize.Comma(int64(stats.Failed)))
	fmt.Fprintf(w, headerFormat, "Elapsed:", formatDuration(report.Elapsed))
	fmt.Fprintln(w)
	fmt.Fprintf(w, headerFormat, "Average total:", formatDuration(avg.Total))
	fmt.Fprintf(w, headerFormat, "Average TCP connect:", formatDuration(avg.TCPConnect))
	if avg.TLSHandshake != nil {
		fmt.Fprintf(w, headerFormat, "Average TLS (est.):", formatDuration(*avg.TLSHandshake))
	}
	fmt.Fprintf(w, headerFormat, "Average TTFB (est.):", formatDuration(avg.TimeToFirstByte))
	fmt.Fprintf(w, headerFormat, "Average download:", formatDuration(avg.Download))
	fmt.Fprintf(w, headerFormat, "Fastest / slowest:", formatDuration(stats.Fastest)+" / "+formatDuration(stats.Slowest))
	p := stats.Percentiles
	fmt.Fprintf(w, headerFormat, "p50 / p90 / p95 / p99:", strings.Join([]string{
		formatDuration(p.P50), formatDuration(p.P90), formatDuration(p.P95), formatDuration(p.P99)}, " / "))
	fmt.Fprintln(w)
	fmt.Fprintf(w, headerFormat, "Total transferred:", humanize.Bytes(uint64(stats.TotalBytes)))
	fmt.Fprintf(w, headerFormat, "Status codes:", formatStatuses(stats))
}

func formatDuration(d time.Duration) string {
	return d.Round(10 * time.Microsecond).String()
}

func formatStatuses(stats result.AggregateStats) string {
	if len(stats.StatusCodes) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(stats.StatusCodes))
	for _, code := range stats.StatusCodes {
		parts = append(parts, fmt.Sprintf("%d (%s)", code, humanize.Comma(int64(stats.Statuses[code]))))
	}
	return strings.Join(parts, ", ")
}

type jsonReport struct {
	queue.Envelope
	ElapsedSeconds float64 `json:"elapsed-seconds"`
}

func confirmOverwrite(message string) bool {
	return prompter.YN(message, false)
}

// writeReport stores the summary as JSON. An existing file is only replaced
// when confirm agrees.
func writeReport(fs afero.Fs, path string, config *types.TestConfig, report proxybench.Report, confirm func(string) bool) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return errors.Wrap(err, "checking output file")
	}
	if exists && !confirm(fmt.Sprintf("%s exists, overwrite?", path)) {
		return errors.Errorf("%s exists, not overwritten", path)
	}
	data, err := json.MarshalIndent(jsonReport{
		Envelope:       queue.NewEnvelope(config.URL, config.Proxy, report.Stats),
		ElapsedSeconds: report.Elapsed.Seconds(),
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	return afero.WriteFile(fs, path, data, 0644)
}
