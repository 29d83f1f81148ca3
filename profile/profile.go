package profile

// Tag is the build tag enabling profiling, also used to name the default
// output directory.
const Tag = "pprof"

// Profiler selects a profiling mode and where its output is written.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. Stop is always safe to call on the result, even
// when Mode is empty or unsupported.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return nop{}
	}

	return start(p)
}

type nop struct{}

func (nop) Stop() {}
