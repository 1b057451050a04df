package storage

import "errors"

// ErrInvalidAmount is returned when an operation's amount is not positive
// (or zero, for signed admin adjustments).
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientFunds is returned when applying an operation would drive a
// wallet's balance negative or below its locked balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrSelfTransfer is returned when the sender and recipient of a transfer
// are the same user.
var ErrSelfTransfer = errors.New("cannot transfer to self")

// ErrWalletNotFound is returned when no wallet exists for the user.
var ErrWalletNotFound = errors.New("wallet not found")

// ErrWalletExists is returned when creating a wallet that already exists.
var ErrWalletExists = errors.New("wallet already exists")

// ErrWalletInactive is returned when mutating a soft-deleted wallet.
var ErrWalletInactive = errors.New("wallet is inactive")

// ErrDuplicateIdempotencyKey is returned when a request replays a known
// idempotency key with different parameters.
var ErrDuplicateIdempotencyKey = errors.New("idempotency key already used with different parameters")

// ErrRetryExhausted is returned when an apply keeps losing the per-wallet
// version race within its retry budget. The caller may safely resubmit.
var ErrRetryExhausted = errors.New("concurrent modification retries exhausted")

// ErrCatalogUnavailable is returned when the package catalog cannot serve a
// price lookup.
var ErrCatalogUnavailable = errors.New("package catalog unavailable")

// ErrPackageNotFound is returned for unknown or inactive packages.
var ErrPackageNotFound = errors.New("package not found")

// ErrAdminUnauthorized is returned when a privileged operation is attempted
// without the admin capability.
var ErrAdminUnauthorized = errors.New("admin capability required")

// ErrHoldNotActive is returned when capturing a hold that was already
// released or captured.
var ErrHoldNotActive = errors.New("hold is not active")

// ErrTransactionNotFound is returned when a transaction id is unknown.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrNotReversible is returned when reversing a transaction that is not in
// the completed state.
var ErrNotReversible = errors.New("transaction is not reversible")
