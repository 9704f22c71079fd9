package model

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	// KindValidation covers missing required values and empty create inputs.
	// Always recovered locally and never sent over the network.
	KindValidation ErrorKind = "validation"
	// KindParse covers malformed or unexpected JSON from the generation
	// service. Recovered by degrading to an empty schema.
	KindParse ErrorKind = "parse"
	// KindTransport covers network failures and non-2xx responses. The
	// triggering transition is rolled back.
	KindTransport ErrorKind = "transport"
)

// KindError is implemented by errors that carry an ErrorKind.
type KindError interface {
	error
	Kind() ErrorKind
}
