package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Ledger stores return these
// (optionally wrapped) so services can translate them into protocol errors.
//
// - ErrNotFound: no record at the derived address
// - ErrConflict: a create hit an address that already holds a record, or an
//   optimistic transaction lost a race and ran out of retries
// - ErrUnavailable: the backing store could not be reached
// - ErrCorrupt: a stored payload could not be decoded into its record type
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrCorrupt     = errors.New("corrupt record")
)
