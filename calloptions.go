package sharedtable

// CallOption configures a single call to a public operation, as opposed to
// Option (options.go), which configures the table itself at construction.
// The only call option today is WithCallerLock, spec.md §4.4's
// "caller-scoped override": `{lockWrite: true}`.
type CallOption func(*callOpts)

type callOpts struct {
	callerLock bool
}

func resolveCallOpts(opts []CallOption) callOpts {
	var c callOpts
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithCallerLock declares that the calling goroutine has already taken the
// table's global gate exclusively via LockWrite, per spec.md §4.4: "every
// public operation accepts a lockWrite option that, when true, declares the
// caller has already taken the global gate exclusively and the operation
// must skip both global acquisition and all line locks." Passing this
// without actually holding LockWrite is undefined behavior (spec.md §9:
// "the {lockWrite:true} pattern replaces ambient/thread-local lock state").
func WithCallerLock() CallOption {
	return func(c *callOpts) { c.callerLock = true }
}
