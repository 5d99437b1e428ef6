package analysis

import "errors"

// ErrUnparseable means the provider reply carried no recognizable
// structure at all. Callers degrade to showing the raw text; this is
// never fatal to the invocation's HTTP response.
var ErrUnparseable = errors.New("unparseable provider response")

const (
	ErrorCodeValidation    = "missing_field"
	ErrorCodeUnsupported   = "unsupported_format"
	ErrorCodeCorrupt       = "corrupt_document"
	ErrorCodeEmpty         = "empty_document"
	ErrorCodeTooLarge      = "payload_too_large"
	ErrorCodeCredential    = "missing_credential"
	ErrorCodeProvider      = "provider_error"
	ErrorCodeProviderRetry = "provider_unavailable"
	ErrorCodeInternal      = "internal_error"
)
