package dictionary

import (
	"context"
	"log/slog"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
)

// FindMatch looks candidates up one at a time, in order, and returns the
// first normalized term the dictionary knows. Remaining candidates are not
// looked up. A failed lookup is logged and treated as a miss; only context
// cancellation is returned as an error.
func FindMatch(ctx context.Context, lookup Lookup, candidates []string) (string, bool, error) {
	for _, candidate := range candidates {
		term := ingest.NormalizeWord(candidate)
		if term == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		found, err := lookup.Has(ctx, term)
		if err != nil {
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			slog.Warn("dictionary lookup failed", "term", term, "error", err)
			continue
		}
		if found {
			return term, true, nil
		}
	}
	return "", false, nil
}
