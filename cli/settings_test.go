package main

import (
	"testing"

	"github.com/goadapp/proxybench/bench/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSettings = "testdata/test-settings.ini"

func TestReadSettings(t *testing.T) {
	assert := assert.New(t)
	config := types.NewTestConfig()
	require.NoError(t, loadSettings(config, testSettings, true))

	assert.Equal("http://file-config.com/", config.URL, "Should load the URL")
	assert.Equal("socks5://127.0.0.1:1080", config.Proxy, "Should load the proxy")
	assert.Equal(107, config.Requests, "Should load the request count")
	assert.Equal(7, config.Concurrency, "Should load the concurrency setting")
	assert.Equal(9, config.Timeout, "Should load the request timeout")
	assert.Equal("test-result.json", config.Output, "Should load the output file")
	assert.Equal("eu-west-1", config.Region, "Should load the region")
	assert.Equal([]string{"cache-control: no-cache", "auth-token: YOUR-SECRET-AUTH-TOKEN"}, config.Headers, "Should load the headers")
	assert.NoError(config.Check())
}

func TestMissingSettingsFile(t *testing.T) {
	config := types.NewTestConfig()
	assert.NoError(t, loadSettings(config, "testdata/missing.ini", false))
	assert.Equal(t, types.DefaultRequests, config.Requests)
	assert.Error(t, loadSettings(config, "testdata/missing.ini", true))
}

func TestFlagsOverrideSettings(t *testing.T) {
	assert := assert.New(t)
	app, f := newApp()
	config, err := aggregateConfiguration(app, f, []string{
		"--settings", testSettings,
		"-n", "5",
		"-H", "x-run: 1",
		"--proxy", "http://127.0.0.1:3128",
	})
	require.NoError(t, err)
	assert.Equal(5, config.Requests, "flag should override the settings file")
	assert.Equal(7, config.Concurrency, "settings file should override the default")
	assert.Equal("http://127.0.0.1:3128", config.Proxy)
	assert.Equal("http://file-config.com/", config.URL, "unset flag default should not override the settings file")
	assert.Equal([]string{"cache-control: no-cache", "auth-token: YOUR-SECRET-AUTH-TOKEN", "x-run: 1"}, config.Headers)
}

func TestDefaultsWithoutSettingsFile(t *testing.T) {
	assert := assert.New(t)
	app, f := newApp()
	config, err := aggregateConfiguration(app, f, []string{"-p", "socks4://10.0.0.1:1080"})
	require.NoError(t, err)
	assert.Equal(types.DefaultURL, config.URL)
	assert.Equal(types.DefaultRequests, config.Requests)
	assert.Equal(types.DefaultConcurrency, config.Concurrency)
	assert.Equal(types.DefaultTimeout, config.Timeout)
	assert.Equal("socks4://10.0.0.1:1080", config.Proxy)
	assert.False(config.Live)
}

func TestExplicitMissingSettingsFile(t *testing.T) {
	app, f := newApp()
	_, err := aggregateConfiguration(app, f, []string{"--settings", "testdata/missing.ini"})
	assert.Error(t, err)
}

func TestBadFlag(t *testing.T) {
	app, f := newApp()
	_, err := aggregateConfiguration(app, f, []string{"--requests", "lots"})
	assert.Error(t, err)
}
