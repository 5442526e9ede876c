package constants

const (
	// ContextKeyUserID holds the authenticated user's ID in the gin context.
	ContextKeyUserID = "user_id"
	// ContextKeyUserRole holds the authenticated user's role.
	ContextKeyUserRole = "user_role"
	// ContextKeyTokenID holds the jti of the bearer token used for the request.
	ContextKeyTokenID = "token_id"
	// ContextKeyTokenExpiry holds the expiry of the bearer token used for the request.
	ContextKeyTokenExpiry = "token_expiry"

	MinPasswordLength = 8

	// MaxIdentifierAttempts bounds how many identifiers are tried before a create gives up.
	MaxIdentifierAttempts = 3

	TemplateModern       = "modern"
	TemplateOldAesthetic = "old-aesthetic"

	APIVersion = "1.0.0"
)

// Templates lists every template a portfolio may use.
var Templates = []string{TemplateModern, TemplateOldAesthetic}
