package model

// Shared defaults used by the CLI and the analysis packages.
const (
	DefaultSessionThreshold = 7200 // seconds of idle time that start a new session
	DefaultImageWidth       = 1400
	DefaultImageHeight      = 1000
	DefaultOutputPath       = "images/plot.png"
	DefaultModel            = "scwind"
	DefaultLogDir           = "logs"
)
