package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/goadapp/proxybench/api"
	"github.com/goadapp/proxybench/bench/types"
	termbox "github.com/nsf/termbox-go"
)

const redrawInterval = 100 * time.Millisecond

type liveView struct {
	config    *types.TestConfig
	started   time.Time
	lastDraw  time.Time
	closeOnce sync.Once
}

func startLiveView(config *types.TestConfig) (*liveView, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	view := &liveView{config: config, started: time.Now()}
	go view.pollEvents()
	view.draw(api.Progress{Requested: config.Requests})
	return view, nil
}

// pollEvents lets the user abort with Esc or Ctrl-C while termbox owns the
// terminal. In-flight requests are abandoned.
func (v *liveView) pollEvents() {
	for {
		ev := termbox.PollEvent()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		if ev.Type == termbox.EventKey && (ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC) {
			v.closeOnce.Do(termbox.Close)
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(1)
		}
	}
}

func (v *liveView) update(p api.Progress) {
	if !p.Finished() && time.Since(v.lastDraw) < redrawInterval {
		return
	}
	v.draw(p)
}

func (v *liveView) draw(p api.Progress) {
	v.lastDraw = time.Now()
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	width, _ := termbox.Size()

	printLine(0, termbox.ColorCyan, fmt.Sprintf("proxybench %s via %s", v.config.URL, v.config.Proxy))
	percent := 100.0
	if p.Requested > 0 {
		percent = float64(p.Done) / float64(p.Requested) * 100
	}
	printLine(2, termbox.ColorDefault, fmt.Sprintf("%.2f%% done (%d requests out of %d)", percent, p.Done, p.Requested))
	printLine(3, termbox.ColorGreen, fmt.Sprintf("Completed: %d", p.Done-p.Failed))
	printLine(4, termbox.ColorRed, fmt.Sprintf("Failed:    %d", p.Failed))
	printLine(5, termbox.ColorDefault, fmt.Sprintf("Elapsed:   %s", time.Since(v.started).Round(time.Millisecond)))

	barWidth := width - 2
	if barWidth > 0 {
		filled := int(float64(barWidth) * percent / 100)
		for x := 0; x < barWidth; x++ {
			ch := '░'
			if x < filled {
				ch = '█'
			}
			termbox.SetCell(x+1, 7, ch, termbox.ColorGreen, termbox.ColorDefault)
		}
	}
	printLine(9, termbox.ColorDefault, "Press Esc to abort")
	termbox.Flush()
}

// close restores the terminal. It must not be called from pollEvents.
func (v *liveView) close() {
	v.closeOnce.Do(func() {
		termbox.Interrupt()
		termbox.Close()
	})
}

func printLine(y int, fg termbox.Attribute, text string) {
	x := 1
	for _, ch := range text {
		termbox.SetCell(x, y, ch, fg, termbox.ColorDefault)
		x++
	}
}
