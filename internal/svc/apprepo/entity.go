package apprepo

import (
	"github.com/lib/pq"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusSuspended = "suspended"
)

const (
	SortRecent  = "recent"
	SortPopular = "popular"
	SortRating  = "rating"
)

// App is an application listed in the store.
// Json tag is used for caching.
type App struct {
	ID          int64 `json:"id" db:"id" validate:"required"` // primary key
	DeveloperID int64 `json:"developer_id" db:"developer_id" validate:"required"`

	Name             locale.Text `json:"name" db:"name"`
	Description      locale.Text `json:"description" db:"description"`
	ShortDescription locale.Text `json:"short_description" db:"short_description"`
	Requirements     locale.Text `json:"requirements" db:"requirements"`

	Category    string         `json:"category" db:"category" validate:"required"`
	Version     string         `json:"version" db:"version" validate:"required"`
	Icon        string         `json:"icon" db:"icon"`
	Screenshots pq.StringArray `json:"screenshots" db:"screenshots"`
	DownloadURL string         `json:"download_url" db:"download_url" validate:"required"`
	WebsiteURL  string         `json:"website_url" db:"website_url"`
	SupportURL  string         `json:"support_url" db:"support_url"`
	Size        string         `json:"size" db:"size"`
	Tags        pq.StringArray `json:"tags" db:"tags"`

	// Derived, only written by SetRating and IncrementDownloads.
	Rating       float64 `json:"rating" db:"rating"`
	TotalRatings int64   `json:"total_ratings" db:"total_ratings"`
	Downloads    int64   `json:"downloads" db:"downloads"`

	Status   string `json:"status" db:"status" validate:"required,oneof=pending approved rejected suspended"`
	Featured bool   `json:"featured" db:"featured"`

	// Timestamp using integer as unix microsecond in UTC.
	// PublishedAt is zero until the app is approved for the first time.
	CreatedAt   int64 `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt   int64 `json:"updated_at" db:"updated_at" validate:"required"`
	PublishedAt int64 `json:"published_at" db:"published_at"`
}
