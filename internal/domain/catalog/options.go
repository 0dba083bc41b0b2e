package catalog

// Option configures a Catalog.
type Option func(*Catalog)

// WithWorkAreaPolicy sets the policy for unknown work areas.
func WithWorkAreaPolicy(p Policy) Option {
	return func(c *Catalog) {
		if p != "" {
			c.areaPolicy = p
		}
	}
}

// WithTechnologyPolicy sets the policy for unknown technologies.
func WithTechnologyPolicy(p Policy) Option {
	return func(c *Catalog) {
		if p != "" {
			c.techPolicy = p
		}
	}
}
