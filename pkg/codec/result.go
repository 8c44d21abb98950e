package codec

import "errors"

// DecodeResult is the outcome of decoding one account. It holds either a
// review or the cause it could not be produced.
type DecodeResult struct {
	review      Review
	initialized bool
	ok          bool
	err         error
}

// Review returns the decoded review and true on success.
func (r DecodeResult) Review() (Review, bool) {
	return r.review, r.ok
}

// Initialized reports the account's initialized flag. False for failed decodes.
func (r DecodeResult) Initialized() bool {
	return r.initialized
}

// Err returns nil on success, ErrNoAccountData for missing input, or an error
// wrapping ErrMalformedAccountData.
func (r DecodeResult) Err() error {
	return r.err
}

// Absent reports whether no account data was supplied.
func (r DecodeResult) Absent() bool {
	return errors.Is(r.err, ErrNoAccountData)
}

// Malformed reports whether account data was present but unreadable.
func (r DecodeResult) Malformed() bool {
	return errors.Is(r.err, ErrMalformedAccountData)
}
