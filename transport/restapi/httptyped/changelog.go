package httptyped

import (
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/changelogsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
)

type Changelog struct {
	ID          int64       `json:"id,string"`
	AppID       int64       `json:"appId,string"`
	DeveloperID int64       `json:"developerId,string"`
	Version     string      `json:"version"`
	Title       locale.Text `json:"title"`
	Content     locale.Text `json:"content"`
	Type        string      `json:"type"`
	ReleaseDate time.Time   `json:"releaseDate"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func ChangelogFromSvc(c changelogsvc.Changelog) Changelog {
	return Changelog{
		ID:          c.ID,
		AppID:       c.AppID,
		DeveloperID: c.DeveloperID,
		Version:     c.Version,
		Title:       c.Title,
		Content:     c.Content,
		Type:        c.Type,
		ReleaseDate: c.ReleaseDate,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ChangelogsFromSvc(list []changelogsvc.Changelog) []Changelog {
	out := make([]Changelog, 0, len(list))
	for _, c := range list {
		out = append(out, ChangelogFromSvc(c))
	}

	return out
}

type ChangelogResp struct {
	Changelog Changelog `json:"changelog"`
}

type ChangelogsResp struct {
	Changelogs []Changelog `json:"changelogs"`
}
