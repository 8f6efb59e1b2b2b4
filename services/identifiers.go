package services

import (
	"fmt"
	"regexp"
	"strings"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// NormalizeTableName maps a table name as used by the parser ("Upload",
// "ModifiedPeptide") to the lower-case name in the database. Anything that
// is not a plain identifier is rejected since the name ends up in SQL.
func NormalizeTableName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if !tableNamePattern.MatchString(n) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return n, nil
}
