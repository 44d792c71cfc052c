package hme

import "github.com/hmegen/hmegen/internal/common/apperrors"

var (
	// ErrConfiguration reports a missing or unusable session credential or setting.
	ErrConfiguration = apperrors.New("configuration error")
	// ErrTransport reports that the service could not be reached.
	ErrTransport = apperrors.New("transport error")
	// ErrProtocol reports a response body that is not the expected JSON document.
	ErrProtocol = apperrors.New("protocol error")
	// ErrDomain reports an explicit success:false from the service.
	ErrDomain = apperrors.New("service reported failure")
	// ErrListFailed is returned by Lister.List when the listing could not be obtained.
	ErrListFailed = ErrDomain.New("failed to list aliases")
)
