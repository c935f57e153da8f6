package sessionrepo

// Session is an opaque login session, referenced by the access token id (jti).
type Session struct {
	ID        int64  `json:"id" db:"id" validate:"required"`
	AccountID int64  `json:"account_id" db:"account_id" validate:"required"`
	Token     string `json:"token" db:"token" validate:"required"`

	// Timestamp using integer as unix microsecond in UTC
	ExpiresAt int64 `json:"expires_at" db:"expires_at" validate:"required,gtfield=CreatedAt"`
	CreatedAt int64 `json:"created_at" db:"created_at" validate:"required"`
}
