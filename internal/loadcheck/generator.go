package loadcheck

import (
	"strings"

	"github.com/google/uuid"
	"github.com/okian/roster/internal/domain/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// spellings of one id that normalize to the same value.
const variantCount = 4

// generateIDs returns n distinct ids in their normalized form.
func generateIDs(n int) []string {
	upper := cases.Upper(language.Und)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = upper.String("LC-" + uuid.NewString())
	}
	return ids
}

// variant spells id differently for each k; all spellings normalize back
// to id.
func variant(id string, k int) string {
	switch k % variantCount {
	case 0:
		return id
	case 1:
		return cases.Lower(language.Und).String(id)
	case 2:
		return "  " + id + "\t"
	default:
		var b strings.Builder
		for i, r := range cases.Lower(language.Und).String(id) {
			if i%2 == 0 {
				b.WriteString(strings.ToUpper(string(r)))
				continue
			}
			b.WriteRune(r)
		}
		return " " + b.String()
	}
}

// buildRecords returns repeats submissions per id, interleaved so that
// copies of one id are spread across the run.
func buildRecords(ids []string, repeats int, submittedAt string) []model.Record {
	out := make([]model.Record, 0, len(ids)*repeats)
	for k := 0; k < repeats; k++ {
		for i, id := range ids {
			out = append(out, model.Record{
				ID:           variant(id, k+i),
				Name:         "Load Check",
				WorkArea:     "backend",
				Technologies: []string{"Go"},
				SubmittedAt:  submittedAt,
			})
		}
	}
	return out
}
