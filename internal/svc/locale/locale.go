// Package locale holds the text triple of the three supported languages.
package locale

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"
)

type Lang string

const (
	EN Lang = "en"
	TH Lang = "th"
	ZH Lang = "zh"
)

// Supported lists every language, the first one is the default.
var Supported = []Lang{EN, TH, ZH}

func ParseLang(s string) (Lang, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range Supported {
		if string(l) == s {
			return l, true
		}
	}

	return "", false
}

// Text is stored as jsonb in postgres.
type Text struct {
	EN string `json:"en"`
	TH string `json:"th"`
	ZH string `json:"zh"`
}

var (
	_ driver.Valuer = Text{}
)

// IsZero reports whether all variants are blank.
func (t Text) IsZero() bool {
	return strings.TrimSpace(t.EN) == "" && strings.TrimSpace(t.TH) == "" && strings.TrimSpace(t.ZH) == ""
}

// Get returns the variant of lang, falling back to the first non-empty variant.
func (t Text) Get(lang Lang) string {
	var s string
	switch lang {
	case TH:
		s = t.TH
	case ZH:
		s = t.ZH
	default:
		s = t.EN
	}

	if s != "" {
		return s
	}

	for _, v := range []string{t.EN, t.TH, t.ZH} {
		if v != "" {
			return v
		}
	}

	return ""
}

func (t Text) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *Text) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = Text{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("locale text: cannot scan type %T", src)
	}
}

// NullText is Text which may be absent, i.e: optional rating review.
type NullText struct {
	Text  Text
	Valid bool
}

func (n NullText) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}

	return n.Text.Value()
}

func (n *NullText) Scan(src interface{}) error {
	if src == nil {
		*n = NullText{}
		return nil
	}

	n.Valid = true
	return n.Text.Scan(src)
}
