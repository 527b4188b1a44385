// Package httperr defines the closed set of error sentinels shared by every
// layer of the engine: the byte reader, the URL parser, the HTTP parser,
// the socket layer and the server loop all return one of these (optionally
// wrapped with github.com/pkg/errors for a stack trace and caller context),
// never an ad hoc string error.
package httperr

import "github.com/pkg/errors"

// Sentinel values. Compare with errors.Is, even through a Wrap/Wrapf.
var (
	ErrBadSocket      = errors.New("bad socket")
	ErrFailedSocket   = errors.New("failed to create socket")
	ErrBadAddr        = errors.New("bad address")
	ErrAddrInUse      = errors.New("address already in use")
	ErrOOM            = errors.New("out of memory")
	ErrOOB            = errors.New("out of bounds")
	ErrFailedRead     = errors.New("failed to read from connection")
	ErrFailedWrite    = errors.New("failed to write to connection")
	ErrEOF            = errors.New("tried to read from consumed connection")
	ErrCont           = errors.New("continue reading/writing")
	ErrURLTooLong     = errors.New("encountered too long url")
	ErrWrongStage     = errors.New("tried to parse message with parser at wrong stage")
	ErrFailedParse    = errors.New("failed to parse http message")
	ErrNotImplemented = errors.New("feature not implemented yet")
)

// Wrap attaches msg as context to err while keeping err recoverable with
// errors.Is. A nil err returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
