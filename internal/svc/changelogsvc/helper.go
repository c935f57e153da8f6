package changelogsvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/changelogrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
)

// MaxVersionLength is the column length of changelog version.
const MaxVersionLength = 64

func ChangelogFromRepo(c changelogrepo.Changelog) Changelog {
	return Changelog{
		ID:          c.ID,
		AppID:       c.AppID,
		DeveloperID: c.DeveloperID,
		Version:     c.Version,
		Title:       c.Title,
		Content:     c.Content,
		Type:        c.Type,
		ReleaseDate: time.UnixMicro(c.ReleaseDate).UTC(),
		CreatedAt:   time.UnixMicro(c.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMicro(c.UpdatedAt).UTC(),
	}
}

func ChangelogsFromRepo(list []changelogrepo.Changelog) []Changelog {
	out := make([]Changelog, 0, len(list))
	for _, c := range list {
		out = append(out, ChangelogFromRepo(c))
	}

	return out
}

// ParseReleaseDate accepts RFC3339 timestamp or a plain date (midnight UTC).
func ParseReleaseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, svcerr.InvalidInput("releaseDate must be RFC3339 or YYYY-MM-DD")
	}

	return t.UTC(), nil
}

func validType(t string) bool {
	switch t {
	case changelogrepo.TypeMajor, changelogrepo.TypeMinor, changelogrepo.TypePatch, changelogrepo.TypeHotfix:
		return true
	default:
		return false
	}
}

func errInvalidType() error {
	return svcerr.InvalidInput("type must be one of major, minor, patch or hotfix")
}

func validVersionLength(version string) bool {
	return validator.Var(version, fmt.Sprintf("max=%d", MaxVersionLength)) == nil
}

func errVersionTooLong() error {
	return svcerr.InvalidInput("version must be at most %d characters", MaxVersionLength)
}
