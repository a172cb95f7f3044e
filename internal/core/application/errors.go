package application

import (
	"errors"
	"fmt"
)

const defaultProfileErrorCode = "INVALID_REQUEST"

var (
	// ErrNotLoggedIn is returned when an operation requires an authenticated
	// wallet.
	ErrNotLoggedIn = errors.New("wallet is not logged in")
	// ErrExchangeUnavailable is returned when the session has no exchange
	// clients, that is when the wallet metadata is protected by a second
	// password.
	ErrExchangeUnavailable = errors.New("exchange is not available")
	// ErrPollTimeout is returned by a poll that did not reach the target state
	// within the max poll time.
	ErrPollTimeout = errors.New("poll timed out")
	// ErrPollCanceled is returned by a poll stopped with Cancel.
	ErrPollCanceled = errors.New("poll canceled")
	// ErrNoPendingKYC is returned when attempting to poll without a pending KYC.
	ErrNoPendingKYC = errors.New("no pending kyc to poll")
	ErrProfileNotFetched = errors.New("profile not fetched yet")
	ErrTradeNotFound     = errors.New("trade not found")
	ErrCurrencyNotFound  = errors.New("currency not found")
	// ErrCheckoutLocked is returned when a buy is submitted while another one
	// is still in progress.
	ErrCheckoutLocked     = errors.New("checkout is locked by another buy")
	ErrCheckoutNotOpen    = errors.New("checkout is not open")
	ErrCheckoutNotAllowed = errors.New("checkout requires a profile and a linked account")
	ErrQuickStartNotOpen  = errors.New("quick start is not open")
	ErrNoQuote            = errors.New("no quote available")
	ErrMediumUnavailable  = errors.New("payment medium not available for quote")
	ErrInvalidField       = errors.New("unknown checkout field")
	ErrInvalidCurrency    = errors.New("unsupported base currency")
)

// ProfileError is returned when fetching the profile fails. Code is the error
// code parsed from the partner response, upper-cased.
type ProfileError struct {
	Code string
	Err  error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("failed to fetch profile: %s", e.Code)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}
