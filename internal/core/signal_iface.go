package core

//go:generate mockgen -destination=mocks/mock_signal.go -package=mocks . SignalConnection

// Frame is one encoded envelope.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking.
	TrySend(Frame) error
	Close()
}
