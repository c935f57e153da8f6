// Package pgutil contains helpers shared by postgres repositories.
package pgutil

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// UniqueViolation is postgres error code of unique_violation.
const UniqueViolation pq.ErrorCode = "23505"

// IsUniqueViolation reports whether err comes from inserting duplicate value to unique index.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == UniqueViolation
	}

	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern return ILIKE pattern matching s as literal substring.
// The query must use the default escape character (backslash).
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
