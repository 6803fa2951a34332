package sdk

// Version and GitCommit identify the running build. Both are plain
// vars rather than embeds so they can be overridden at link time with
// -ldflags "-X github.com/hollowgate/umpbridge/internal/sdk.Version=... -X .../sdk.GitCommit=...".
var (
	Version   = "1.0.13" //nolint:gochecknoglobals
	GitCommit = "unknown" //nolint:gochecknoglobals
)
