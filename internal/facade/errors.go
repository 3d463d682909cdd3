package facade

import "github.com/pkg/errors"

// ErrInvalidState is returned by any operation attempted after the
// facade's solver has been finalized (spec §4.1 Failure).
var ErrInvalidState = errors.New("facade: operation attempted after solver finalization")

// ErrInvalidLiteral is returned when an operation references a literal or
// variable outside the range the facade has allocated.
var ErrInvalidLiteral = errors.New("facade: literal out of range")
