package remote

import "errors"

var (
	// ErrTransport covers failures to reach the store or read its response.
	ErrTransport = errors.New("remote transport failed")
	// ErrDecode is returned when the response is not a structured result.
	ErrDecode = errors.New("remote response not decodable")
)

// ErrUnexpectedStatus is returned by reads that do not answer 200.
var ErrUnexpectedStatus = errors.New("remote unexpected status")
