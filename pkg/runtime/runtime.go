package runtime

var (
	// Version and build metadata, set at link time.
	Version   = "0.0.0-dev"
	GitCommit = "unknown"
	Timestamp = "unknown"
)
