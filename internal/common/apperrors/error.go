// Package apperrors provides chainable application errors. An Error can be used as a
// template for more specific errors, can carry extra causes, and matches any of its
// ancestors or causes with errors.Is.
package apperrors

// Error extends the standard error interface with chaining helpers. All helpers return
// a new Error and leave the receiver untouched, so package-level sentinels stay immutable.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // new error using current as template
	Msg(msg string) Error                  // new message, wraps the current error
	MsgErr(msg string, err ...error) Error // new message, wraps current and extra errors
	SetStatusCode(int) Error               // records an upstream status code
	StatusCode() int                       // upstream status code, 0 if none
	ErrorAll() string                      // message followed by attached causes
}
