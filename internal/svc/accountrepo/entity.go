package accountrepo

// Account is registered user, either developer or admin.
// Json tag is used for caching.
type Account struct {
	ID           int64  `json:"id" db:"id" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	PasswordHash string `json:"password_hash" db:"password_hash" validate:"required"`
	Name         string `json:"name" db:"name" validate:"required"`
	Role         string `json:"role" db:"role" validate:"required,oneof=developer admin"`
	Language     string `json:"language" db:"language" validate:"required,oneof=en th zh"`
	Avatar       string `json:"avatar" db:"avatar" validate:"-"` // data uri, empty means no avatar
	IsVerified   bool   `json:"is_verified" db:"is_verified"`

	// Timestamp using integer as unix microsecond in UTC
	CreatedAt int64 `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at" validate:"required"`
}
