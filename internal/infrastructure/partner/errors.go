package partner

import "errors"

// ErrNotSupported is returned for operations the partner does not offer.
var ErrNotSupported = errors.New("operation not supported by exchange partner")
