package pkg

import "errors"

var (
	// ErrMalformedTicket is returned when a ticket buffer is too short or a
	// text field does not decode.
	ErrMalformedTicket = errors.New("malformed ticket")
	// ErrUnknownKeyIndex is returned when a ticket references a common key
	// index outside the known set.
	ErrUnknownKeyIndex = errors.New("unknown common key index")
	// ErrKeyDerivation is returned when the key table or cipher inputs are
	// unusable for an otherwise valid key index.
	ErrKeyDerivation = errors.New("title key derivation failed")
	// ErrInvalidWAD is returned for buffers that are not a supported WAD.
	ErrInvalidWAD = errors.New("invalid WAD file")
)
