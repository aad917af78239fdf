package runner

var (
	// DebugPProf serves the pprof handlers under the debug router.
	DebugPProf bool = false

	// PrintStackOnPanic adds the stack of a recovered handler panic to the
	// log.
	PrintStackOnPanic bool = false
)

// ValidHeaders are the headers allowed by CORS on the api router.
var ValidHeaders = []string{"Content-Type", "X-Requested-With", "Cache-Control", "Access-Control"}
