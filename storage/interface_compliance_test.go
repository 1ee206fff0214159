package storage

// Compile-time checks that Store satisfies every storage capability
var (
	_ Storage        = (*Store)(nil)
	_ ContextReader  = (*Store)(nil)
	_ ActivityWriter = (*Store)(nil)
	_ AlertStore     = (*Store)(nil)
	_ Provisioner    = (*Store)(nil)
)
