package common

import (
	"errors"
	"fmt"
)

var (
	ErrDecodeResponse   = fmt.Errorf("cannot decode response")
	ErrUnexpectedStatus = fmt.Errorf("unexpected response status")
	ErrNoCredentials    = fmt.Errorf("no url or token provided")
)

// Recoverable reports whether a listing error may be logged and its subtree
// skipped instead of aborting the crawl. Transport errors are never
// recoverable.
func Recoverable(err error) bool {
	return errors.Is(err, ErrDecodeResponse) || errors.Is(err, ErrUnexpectedStatus)
}
