package firewallcmd

type config struct {
	params []string
}

func (c *config) addParam(ps ...string) {
	c.params = append(c.params, ps...)
}

type CmdOption func(c *config)

// WithPermanent targets the permanent configuration instead of the runtime one.
func WithPermanent() CmdOption {
	return func(c *config) {
		c.addParam(flagPermanent)
	}
}

func applyOpts(opts ...CmdOption) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type clientConfig struct {
	permanent bool
	tmpDir    string
}

type Option func(c *clientConfig)

// WithPermanentConfig adds --permanent to every state call made by the client.
func WithPermanentConfig(v bool) Option {
	return func(c *clientConfig) {
		c.permanent = v
	}
}

// WithTmpDir sets where entry batch files are written, os.TempDir by default.
func WithTmpDir(dir string) Option {
	return func(c *clientConfig) {
		c.tmpDir = dir
	}
}
