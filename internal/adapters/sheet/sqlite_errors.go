package sheet

import "strings"

// isMissingTable matches the errors SQLite reports for a sheet whose
// schema or header row has not been created yet.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "FOREIGN KEY constraint failed")
}
