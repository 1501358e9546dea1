package repack

import "github.com/zeebo/errs"

var (
	// Error is the class of errors that do not fit a more specific class.
	Error = errs.Class("repack")

	// InvalidArgument is the class of errors for malformed arguments. They
	// are always returned before the destination is written.
	InvalidArgument = errs.Class("invalid argument")

	// IndexOutOfRange is the class of errors for table lookups past the end
	// of the table.
	IndexOutOfRange = errs.Class("index out of range")
)
