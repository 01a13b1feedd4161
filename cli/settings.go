package main

import (
	"os"

	"github.com/goadapp/proxybench/bench/types"
	"github.com/pkg/errors"
	ini "gopkg.in/ini.v1"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

// aggregateConfiguration merges defaults, the settings file and the command
// line, in that order of precedence.
func aggregateConfiguration(app *kingpin.Application, f *flags, args []string) (*types.TestConfig, error) {
	ctx, err := app.ParseContext(args)
	if err != nil {
		return nil, err
	}
	if _, err := app.Parse(args); err != nil {
		return nil, err
	}
	setByUser := userFlags(ctx)

	config := types.NewTestConfig()
	config.Settings = *f.settings
	if err := loadSettings(config, *f.settings, setByUser["settings"]); err != nil {
		return nil, err
	}

	if setByUser["url"] {
		config.URL = *f.url
	}
	if setByUser["proxy"] {
		config.Proxy = *f.proxy
	}
	if setByUser["requests"] {
		config.Requests = *f.requests
	}
	if setByUser["concurrency"] {
		config.Concurrency = *f.concurrency
	}
	if setByUser["timeout"] {
		config.Timeout = *f.timeout
	}
	if setByUser["header"] {
		config.Headers = append(config.Headers, *f.headers...)
	}
	if setByUser["output"] {
		config.Output = *f.output
	}
	if setByUser["publish"] {
		config.Publish = *f.publish
	}
	if setByUser["region"] {
		config.Region = *f.region
	}
	if setByUser["live"] {
		config.Live = *f.live
	}
	return config, nil
}

func userFlags(ctx *kingpin.ParseContext) map[string]bool {
	set := make(map[string]bool)
	for _, element := range ctx.Elements {
		if flag, ok := element.Clause.(*kingpin.FlagClause); ok {
			set[flag.Model().Name] = true
		}
	}
	return set
}

// loadSettings reads the [general] and [headers] sections of an ini file into
// config. A missing file is only an error when it was asked for explicitly.
func loadSettings(config *types.TestConfig, path string, required bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if required {
			return errors.Errorf("settings file %s not found", path)
		}
		return nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return errors.Wrapf(err, "reading settings file %s", path)
	}

	general := file.Section("general")
	config.URL = general.Key("url").MustString(config.URL)
	config.Proxy = general.Key("proxy").MustString(config.Proxy)
	config.Requests = general.Key("requests").MustInt(config.Requests)
	config.Concurrency = general.Key("concurrency").MustInt(config.Concurrency)
	config.Timeout = general.Key("timeout").MustInt(config.Timeout)
	config.Output = general.Key("output").MustString(config.Output)
	config.Publish = general.Key("publish").MustString(config.Publish)
	config.Region = general.Key("region").MustString(config.Region)
	config.Live = general.Key("live").MustBool(config.Live)

	for _, key := range file.Section("headers").Keys() {
		config.Headers = append(config.Headers, key.Name()+": "+key.Value())
	}
	return nil
}
