package config

const (
	// DefaultDatabasePath is the default path for the account and login-history database
	DefaultDatabasePath = "./data.db"

	// DefaultAccessTokenMinutes is the access token lifetime when none is configured
	DefaultAccessTokenMinutes = 60

	// DefaultUploadExpiresSeconds is the upload token lifetime when the caller gives none
	DefaultUploadExpiresSeconds = 3600

	// MaxUploadExpiresSeconds is the longest lifetime S3 accepts for a presigned URL (7 days)
	MaxUploadExpiresSeconds = 7 * 24 * 60 * 60
)

// SupportedAlgorithms lists the JWT signing algorithms the token issuer accepts.
var SupportedAlgorithms = []string{"HS256", "HS384", "HS512"}
