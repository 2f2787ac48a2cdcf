package accounts

import (
	"github.com/goliatone/go-errors"
)

// ErrNoPendingUser is returned when activation finds no pending row for the
// caller's identifier. Safe to surface: it is part of the expected flow once
// an account has been activated.
var ErrNoPendingUser = errors.New("no pending user found", errors.CategoryNotFound).
	WithTextCode("NO_PENDING_USER")

// ErrDuplicateAccount is returned when a registrant's email already belongs
// to a pending or active account.
var ErrDuplicateAccount = errors.New("account already exists for this email", errors.CategoryConflict).
	WithTextCode("DUPLICATE_ACCOUNT")

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth)
