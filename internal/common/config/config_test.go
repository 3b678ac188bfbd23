package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "$", cfg.Discord.CommandPrefix)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 120*time.Second, cfg.Giveaway.SetupStepTimeout)
	assert.Equal(t, time.Second, cfg.Giveaway.CountdownTick)
	assert.Equal(t, "Asia/Kolkata", cfg.Giveaway.DisplayTimezone)
	assert.Equal(t, ActivationBackendFile, cfg.Activation.Backend)
	assert.Equal(t, "activated_servers.json", cfg.Activation.File)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "giveaway:events", cfg.Redis.EventsStream)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LogFormat = "console"
		c.Discord.Token = "t"
		c.Discord.CommandPrefix = "$"
		c.Giveaway.SetupStepTimeout = time.Minute
		c.Giveaway.CountdownTick = time.Second
		c.Giveaway.DisplayTimezone = "UTC"
		c.Activation.Backend = ActivationBackendFile
		c.Activation.File = "a.json"
		c.Server.Port = 8080
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "json logs", mutate: func(c *Config) { c.LogFormat = "JSON" }},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "empty prefix", mutate: func(c *Config) { c.Discord.CommandPrefix = " " }, wantErr: true},
		{name: "zero step timeout", mutate: func(c *Config) { c.Giveaway.SetupStepTimeout = 0 }, wantErr: true},
		{name: "zero tick", mutate: func(c *Config) { c.Giveaway.CountdownTick = 0 }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Giveaway.DisplayTimezone = "Mars/Olympus" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Activation.Backend = "s3" }, wantErr: true},
		{name: "redis backend without redis", mutate: func(c *Config) { c.Activation.Backend = ActivationBackendRedis }, wantErr: true},
		{name: "redis backend with redis", mutate: func(c *Config) {
			c.Activation.Backend = ActivationBackendRedis
			c.Redis.Enabled = true
		}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
