package common

// SessionTokenHeaderName is the gRPC metadata key carrying the session token
// minted at signup.
const SessionTokenHeaderName = "session_token"

// Keys of the shared metadata slot read by the notification extension.
const (
	MetaSessionPrefix     = "session."
	MetaSessionUserID     = MetaSessionPrefix + "user_id"
	MetaSessionToken      = MetaSessionPrefix + "token"
	MetaEnrichmentEnabled = "enrichment.enabled"
)
