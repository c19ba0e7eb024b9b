package ipsetkeeper

import (
	"ipset-keeper/firewallcmd"
	"ipset-keeper/provider"
)

type config struct {
	cli            *firewallcmd.Client
	provider       provider.IProvider
	reloadOnChange bool
	skipStateCheck bool
}

type Option func(c *config)

func WithClient(cli *firewallcmd.Client) Option {
	return func(c *config) {
		c.cli = cli
	}
}

// WithProvider overrides the provider built from the client.
func WithProvider(p provider.IProvider) Option {
	return func(c *config) {
		c.provider = p
	}
}

func WithReloadOnChange(v bool) Option {
	return func(c *config) {
		c.reloadOnChange = v
	}
}

func WithSkipStateCheck(v bool) Option {
	return func(c *config) {
		c.skipStateCheck = v
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
