package yamlet

import "fmt"

const defaultMaxDepth = 1000

type config struct {
	maxDepth int
	policies *Policies
}

// Option configures decoding or encoding.
type Option func(*config) error

// MaxDepth returns an Option that sets the maximum recursion depth for
// the decoder. This helps prevent stack overflows when decoding highly
// nested documents.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("yamlet: max depth must be a positive integer")
		}
		c.maxDepth = n
		return nil
	}
}

// WithPolicies returns an Option that attaches a field policy table to
// the call.
func WithPolicies(p *Policies) Option {
	return func(c *config) error {
		c.policies = p
		return nil
	}
}

func applyOptions(opts []Option) (config, error) {
	c := config{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return c, err
		}
	}
	return c, nil
}
