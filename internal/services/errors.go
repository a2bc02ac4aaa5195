// Package services defines the business logic for contracts, reminders,
// extraction, and authentication. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Contract-related errors.
var (
	// ErrContractNotFound indicates that the requested contract does not
	// exist or is not accessible to the current user.
	ErrContractNotFound = errors.New("contract not found")

	// ErrNameRequired is returned when a contract is created or updated
	// without a name.
	ErrNameRequired = errors.New("contract name is required")

	// ErrRenewalDateRequired is returned when a contract is created without
	// a renewal date.
	ErrRenewalDateRequired = errors.New("renewal date is required")
)

// Extraction-related errors.
var (
	// ErrExtraction is returned when the completion service produced no
	// content or unparseable output.
	ErrExtraction = errors.New("failed to extract contract dates")

	// ErrTextTooShort is returned when the text recovered from an uploaded
	// PDF is below the minimum-length heuristic (likely a scan or an empty
	// document).
	ErrTextTooShort = errors.New("extracted text too short")
)

// Authentication-related errors.
var (
	// ErrEmailTaken is returned when registering with an address that
	// already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown address or
	// a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
