package tablescout

// Version is the release version reported by the CLI and the servers.
// Release tooling stamps it via -ldflags at build time.
var Version = "0.1.0-dev"
