package dbclient

// CallOptions holds the per-call settings resolved from a list of Options.
// Backends use ApplyOptions to resolve them; applications normally only use
// the With* constructors.
type CallOptions struct {
	// HeldConnection runs the statement on the connection held by a prior
	// Connect call instead of borrowing one from the pool.
	HeldConnection bool
}

// Option adjusts how a single execution call behaves.
type Option func(*CallOptions)

// WithHeldConnection requires the call to run on the connection held by
// Connect, failing with ErrNotConnected when none is held. A connected
// client runs on its held connection even without this option.
func WithHeldConnection() Option {
	return func(o *CallOptions) {
		o.HeldConnection = true
	}
}

// ApplyOptions resolves a list of Options into CallOptions.
// The default is automatic mode: borrow per statement, release afterwards.
func ApplyOptions(opts []Option) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
