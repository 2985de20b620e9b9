package authz

// NotFoundPolicy decides how unresolvable guard targets are reported.
type NotFoundPolicy string

const (
	// NotFoundHide reports unknown resources as Forbidden so callers cannot
	// probe for ids they have no access to.
	NotFoundHide NotFoundPolicy = "hide"

	// NotFoundExpose reports unknown resources as ResourceNotFound.
	NotFoundExpose NotFoundPolicy = "expose"
)

// Config holds authorization configuration.
type Config struct {
	NotFoundPolicy NotFoundPolicy
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{NotFoundPolicy: NotFoundHide}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.NotFoundPolicy != NotFoundExpose {
		c.NotFoundPolicy = NotFoundHide
	}
	return nil
}
