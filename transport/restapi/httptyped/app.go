package httptyped

import (
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
)

type App struct {
	ID               int64       `json:"id,string"`
	DeveloperID      int64       `json:"developerId,string"`
	Name             locale.Text `json:"name"`
	Description      locale.Text `json:"description"`
	ShortDescription locale.Text `json:"shortDescription"`
	Requirements     locale.Text `json:"requirements"`
	Category         string      `json:"category"`
	Version          string      `json:"version"`
	Icon             string      `json:"icon"`
	Screenshots      []string    `json:"screenshots"`
	DownloadURL      string      `json:"downloadUrl"`
	WebsiteURL       string      `json:"websiteUrl"`
	SupportURL       string      `json:"supportUrl"`
	Size             string      `json:"size"`
	Tags             []string    `json:"tags"`
	Rating           float64     `json:"rating"`
	TotalRatings     int64       `json:"totalRatings"`
	Downloads        int64       `json:"downloads"`
	Status           string      `json:"status"`
	Featured         bool        `json:"featured"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
	PublishedAt      *time.Time  `json:"publishedAt,omitempty"`
}

func AppFromSvc(app appsvc.App) App {
	screenshots := app.Screenshots
	if screenshots == nil {
		screenshots = []string{}
	}

	tags := app.Tags
	if tags == nil {
		tags = []string{}
	}

	return App{
		ID:               app.ID,
		DeveloperID:      app.DeveloperID,
		Name:             app.Name,
		Description:      app.Description,
		ShortDescription: app.ShortDescription,
		Requirements:     app.Requirements,
		Category:         app.Category,
		Version:          app.Version,
		Icon:             app.Icon,
		Screenshots:      screenshots,
		DownloadURL:      app.DownloadURL,
		WebsiteURL:       app.WebsiteURL,
		SupportURL:       app.SupportURL,
		Size:             app.Size,
		Tags:             tags,
		Rating:           app.Rating,
		TotalRatings:     app.TotalRatings,
		Downloads:        app.Downloads,
		Status:           app.Status,
		Featured:         app.Featured,
		CreatedAt:        app.CreatedAt,
		UpdatedAt:        app.UpdatedAt,
		PublishedAt:      app.PublishedAt,
	}
}

func AppsFromSvc(apps []appsvc.App) []App {
	out := make([]App, 0, len(apps))
	for _, app := range apps {
		out = append(out, AppFromSvc(app))
	}

	return out
}

type AppResp struct {
	App App `json:"app"`
}

type AppsResp struct {
	Apps []App `json:"apps"`
}
