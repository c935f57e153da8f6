package appsvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/dataurl"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
)

// MaxShortFieldLen is the column length of category, version and size.
const MaxShortFieldLen = 64

func AppFromRepo(app apprepo.App) App {
	a := App{
		ID:               app.ID,
		DeveloperID:      app.DeveloperID,
		Name:             app.Name,
		Description:      app.Description,
		ShortDescription: app.ShortDescription,
		Requirements:     app.Requirements,
		Category:         app.Category,
		Version:          app.Version,
		Icon:             app.Icon,
		Screenshots:      nonNil(app.Screenshots),
		DownloadURL:      app.DownloadURL,
		WebsiteURL:       app.WebsiteURL,
		SupportURL:       app.SupportURL,
		Size:             app.Size,
		Tags:             nonNil(app.Tags),
		Rating:           app.Rating,
		TotalRatings:     app.TotalRatings,
		Downloads:        app.Downloads,
		Status:           app.Status,
		Featured:         app.Featured,
		CreatedAt:        time.UnixMicro(app.CreatedAt).UTC(),
		UpdatedAt:        time.UnixMicro(app.UpdatedAt).UTC(),
	}

	if app.PublishedAt > 0 {
		publishedAt := time.UnixMicro(app.PublishedAt).UTC()
		a.PublishedAt = &publishedAt
	}

	return a
}

func AppsFromRepo(apps []apprepo.App) []App {
	out := make([]App, 0, len(apps))
	for _, app := range apps {
		out = append(out, AppFromRepo(app))
	}

	return out
}

func nonNil(arr []string) []string {
	if arr == nil {
		return []string{}
	}

	return arr
}

// validateRequired checks the mandatory fields in the order the submit form shows them.
func validateRequired(app apprepo.App) error {
	switch {
	case app.Name.IsZero():
		return svcerr.InvalidInput("name is required")
	case app.Description.IsZero():
		return svcerr.InvalidInput("description is required")
	case app.ShortDescription.IsZero():
		return svcerr.InvalidInput("shortDescription is required")
	case strings.TrimSpace(app.Category) == "":
		return svcerr.InvalidInput("category is required")
	case strings.TrimSpace(app.Version) == "":
		return svcerr.InvalidInput("version is required")
	case strings.TrimSpace(app.DownloadURL) == "":
		return svcerr.InvalidInput("downloadUrl is required")
	}

	return nil
}

func validateLength(app apprepo.App) error {
	fields := []struct {
		name  string
		value string
	}{
		{name: "category", value: app.Category},
		{name: "version", value: app.Version},
		{name: "size", value: app.Size},
	}

	for _, f := range fields {
		if err := validator.Var(f.value, fmt.Sprintf("max=%d", MaxShortFieldLen)); err != nil {
			return svcerr.InvalidInput("%s must be at most %d characters", f.name, MaxShortFieldLen)
		}
	}

	return nil
}

func validateImages(app apprepo.App, maxBytes int) error {
	if app.Icon != "" {
		if err := dataurl.Validate(app.Icon, dataurl.DefaultAllowedTypes, maxBytes); err != nil {
			return svcerr.InvalidInput("icon: %s", err)
		}
	}

	for i, s := range app.Screenshots {
		if err := dataurl.Validate(s, dataurl.DefaultAllowedTypes, maxBytes); err != nil {
			return svcerr.InvalidInput("screenshots[%d]: %s", i, err)
		}
	}

	return nil
}

func validStatus(status string) bool {
	switch status {
	case apprepo.StatusPending, apprepo.StatusApproved, apprepo.StatusRejected, apprepo.StatusSuspended:
		return true
	default:
		return false
	}
}

func normalizePage(limit, skip int64) (int64, int64) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	if skip < 0 {
		skip = 0
	}

	return limit, skip
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}

	return out
}

func notFound(id int64) error {
	return &svcerr.Error{
		Kind:    svcerr.KindNotFound,
		Message: "app not found",
		Err:     fmt.Errorf("app id %d", id),
	}
}
