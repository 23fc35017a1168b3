package ports

// BackendError is implemented by adapter errors that carry a message
// produced by a remote service and meant to be shown to users unmodified.
type BackendError interface {
	error
	BackendMessage() string
}
