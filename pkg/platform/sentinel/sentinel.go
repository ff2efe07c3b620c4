package sentinel

import "errors"

// Sentinel errors for ledger and domain facts. Stores and the ledger repository
// return these (optionally wrapped) so the contract can translate them into
// descriptive transaction failures.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist on the ledger
// - ErrConflict: entity already exists (duplicate registration, occupied key)
// - ErrForbidden: caller's role or KYC status does not permit the operation
// - ErrInvalidState: poll not in the status required for the requested action
// - ErrInvalidArgument: malformed date string, disallowed target status
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
)
