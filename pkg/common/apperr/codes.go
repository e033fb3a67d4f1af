package apperr

// Error codes grouped by the HTTP status class they map to.
const (
	// Client-correctable
	CodeValidation   = 40001
	CodeParamInvalid = 40002

	// Verification
	CodeVerificationRejected = 40301

	// Lookup
	CodeNotFound = 40401

	// Rate limiting
	CodeRateLimited = 42901

	// Server side
	CodePersistence   = 50001
	CodeConfigMissing = 50002
	CodeInternal      = 50003

	// Upstream
	CodeUpstreamUnavailable = 50201
	CodeUpstreamRejected    = 50202
	CodeUpstreamTimeout     = 50401
)
