package store

import "errors"

// ErrNotADirectory is returned by Add when the target path does not exist
// or names something other than a directory.
var ErrNotADirectory = errors.New("not a directory")

// ErrAlreadyRegistered is returned by Add when the folder is already in the
// store under canonical-path comparison.
var ErrAlreadyRegistered = errors.New("folder already registered")

// ErrNotRegistered is returned by Remove when no stored entry matches the
// folder under canonical-path comparison.
var ErrNotRegistered = errors.New("folder not registered")

// ErrCacheDirUnavailable is returned by Add on the modern backend when no
// cache base directory could be resolved for the record's clone location.
var ErrCacheDirUnavailable = errors.New("cache directory unavailable")

// ErrHostVersionUnknown is returned by Resolve when the host version cannot
// be determined and no backend was forced through configuration.
var ErrHostVersionUnknown = errors.New("host version unknown")

// errMalformedContainer marks a store file that was read but could not be
// understood as a record container, as opposed to an I/O failure. The
// modern backend resets to defaults on it instead of propagating.
var errMalformedContainer = errors.New("malformed store container")
