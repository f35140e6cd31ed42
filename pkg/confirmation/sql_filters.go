package confirmation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// deleteWhere renders a DeleteFilter as a SQL WHERE clause. placeholder
// returns the driver's bind syntax for the n-th argument (1-based).
func deleteWhere(f DeleteFilter, placeholder func(n int) string, ts func(time.Time) any) (string, []any) {
	var (
		conds []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if f.UserID != uuid.Nil {
		conds = append(conds, "user_id = "+bind(f.UserID))
	}
	if f.OnlyUnverified {
		conds = append(conds, "is_verified = FALSE")
	}
	if !f.IssuedBefore.IsZero() {
		conds = append(conds, "issued_at < "+bind(ts(f.IssuedBefore)))
	}
	if f.ExceptID != uuid.Nil {
		conds = append(conds, "id <> "+bind(f.ExceptID))
	}
	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}
