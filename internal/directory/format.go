package directory

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clientdir/internal/models"
)

// FormatClient renders a search record for display: id, full name, email
// and the comma-joined non-empty phone numbers. Pure string formatting,
// no I/O. A missing email renders as "-".
func FormatClient(rec models.ClientRecord) string {
	email := "-"
	if rec.Email != nil {
		email = *rec.Email
	}

	numbers := make([]string, 0, len(rec.Phones))
	for _, n := range rec.Phones {
		if n != "" {
			numbers = append(numbers, n)
		}
	}

	return fmt.Sprintf("ID: %d, Name: %s %s, Email: %s\nPhones: %s",
		rec.ID, rec.FirstName, rec.LastName, email, strings.Join(numbers, ", "))
}
