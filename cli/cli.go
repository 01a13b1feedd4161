package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goadapp/proxybench"
	"github.com/goadapp/proxybench/bench/types"
	"github.com/goadapp/proxybench/queue"
	"github.com/goadapp/proxybench/version"
	"github.com/goadapp/proxybench/webapi"
	log "github.com/inconshreveable/log15"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

const defaultSettingsFile = "proxybench.ini"

type flags struct {
	url         *string
	proxy       *string
	requests    *int
	concurrency *int
	timeout     *int
	headers     *[]string
	output      *string
	publish     *string
	region      *string
	live        *bool
	settings    *string
	serve       *string
	verbose     *bool
}

func newApp() (*kingpin.Application, *flags) {
	app := kingpin.New("proxybench", "Benchmark HTTP(S) and SOCKS proxies.")
	app.Version(version.String())
	app.HelpFlag.Short('h')
	f := &flags{
		url:         app.Flag("url", "URL to send requests to.").Short('u').Default(types.DefaultURL).String(),
		proxy:       app.Flag("proxy", "Proxy to use: http://host:8080, https://host:8443, socks4://host:1080 or socks5://host:1080.").Short('p').String(),
		requests:    app.Flag("requests", "Number of requests to send.").Short('n').Default(fmt.Sprint(types.DefaultRequests)).Int(),
		concurrency: app.Flag("concurrency", "Number of requests in flight at once.").Short('c').Default(fmt.Sprint(types.DefaultConcurrency)).Int(),
		timeout:     app.Flag("timeout", "Timeout for each request in seconds.").Short('t').Default(fmt.Sprint(types.DefaultTimeout)).Int(),
		headers:     app.Flag("header", "Header to add to each request, \"Name: value\". Repeatable.").Short('H').Strings(),
		output:      app.Flag("output", "Write the JSON report to this file.").Short('o').String(),
		publish:     app.Flag("publish", "Publish the summary to sqs://host/path, amqp://host/ or stdout:.").String(),
		region:      app.Flag("region", "AWS region of the SQS queue.").Default(types.DefaultRegion).String(),
		live:        app.Flag("live", "Show live progress in the terminal.").Bool(),
		settings:    app.Flag("settings", "Settings file.").Default(defaultSettingsFile).String(),
		serve:       app.Flag("serve", "Serve the websocket API on this address instead of running once.").String(),
		verbose:     app.Flag("verbose", "Log every failed request.").Short('v').Bool(),
	}
	return app, f
}

func main() {
	app, f := newApp()
	config, err := aggregateConfiguration(app, f, os.Args[1:])
	app.FatalIfError(err, "")

	logger := newLogger(*f.verbose, config.Live)

	if *f.serve != "" {
		err := webapi.NewServer(logger).Serve(*f.serve)
		app.FatalIfError(err, "serve")
		return
	}

	bench, err := proxybench.NewBenchmark(config, logger)
	app.FatalIfError(err, "")

	var view *liveView
	if config.Live {
		view, err = startLiveView(config)
		app.FatalIfError(err, "live view")
		bench.OnProgress(view.update)
	}
	report := bench.Run(context.Background())
	if view != nil {
		view.close()
	}

	printSummary(os.Stdout, config, report)

	failed := false
	if config.Output != "" {
		if err := writeReport(afero.NewOsFs(), config.Output, config, report, confirmOverwrite); err != nil {
			logger.Error("Writing report failed", "file", config.Output, "err", err)
			failed = true
		}
	}
	if config.Publish != "" {
		if err := publish(config, report); err != nil {
			logger.Error("Publishing results failed", "target", config.Publish, "err", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func newLogger(verbose, live bool) log.Logger {
	lvl := log.LvlInfo
	if verbose {
		lvl = log.LvlDebug
	}
	if live {
		lvl = log.LvlError
	}
	logger := log.New("app", "proxybench")
	logger.SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.LogfmtFormat())))
	return logger
}

func publish(config *types.TestConfig, report proxybench.Report) error {
	sender, err := queue.NewSender(config.Publish, config.Region)
	if err != nil {
		return err
	}
	return sender.SendResult(queue.NewEnvelope(config.URL, config.Proxy, report.Stats))
}
