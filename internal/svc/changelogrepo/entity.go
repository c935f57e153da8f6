package changelogrepo

import "github.com/yusufsyaifudin/appstore/internal/svc/locale"

const (
	TypeMajor  = "major"
	TypeMinor  = "minor"
	TypePatch  = "patch"
	TypeHotfix = "hotfix"
)

// Changelog is release note of one application version.
type Changelog struct {
	ID          int64       `json:"id" db:"id" validate:"required"`
	AppID       int64       `json:"app_id" db:"app_id" validate:"required"`
	DeveloperID int64       `json:"developer_id" db:"developer_id" validate:"required"`
	Version     string      `json:"version" db:"version" validate:"required"`
	Title       locale.Text `json:"title" db:"title"`
	Content     locale.Text `json:"content" db:"content"`
	Type        string      `json:"type" db:"type" validate:"required,oneof=major minor patch hotfix"`

	// Timestamp using integer as unix microsecond in UTC
	ReleaseDate int64 `json:"release_date" db:"release_date" validate:"required"`
	CreatedAt   int64 `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt   int64 `json:"updated_at" db:"updated_at" validate:"required"`
}
