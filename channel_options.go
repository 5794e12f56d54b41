package csp

import (
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

type channelConfig struct {
	name     string
	capacity int
	logger   *zap.Logger
}

// ChannelOption configures a Channel at construction.
type ChannelOption func(*channelConfig)

func defaultChannelConfig() channelConfig {
	return channelConfig{
		name:   ksuid.New().String(),
		logger: currentLogger(),
	}
}

// WithName sets a channel's diagnostic name, used in logged cleanup
// panics. Defaults to a generated ksuid.
func WithName(name string) ChannelOption {
	return func(c *channelConfig) { c.name = name }
}

// WithChannelLogger overrides the logger a channel uses to report panics
// recovered from its own cleanup callbacks. Defaults to the package
// logger set via SetLogger.
func WithChannelLogger(l *zap.Logger) ChannelOption {
	return func(c *channelConfig) { c.logger = l }
}
