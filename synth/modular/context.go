package modular

// Context provides environmental information that module implementations need.
type Context struct {
	SampleRate float64
	BlockSize  int
}
