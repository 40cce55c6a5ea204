package version

const (
	AppName = "Music Streaming API"
	Version = "1.0.0"
)
