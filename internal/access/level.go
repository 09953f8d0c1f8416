// Package access decides, for a principal and a target resource, whether an
// operation is allowed. Tenant scoping and per-project accessibility grants
// are the only two inputs; every resource handler consults this package
// before touching persisted state.
package access

// Level is a per-project accessibility grant level.
type Level string

const (
	ViewOnly Level = "VIEW_ONLY"
	Edit     Level = "EDIT"
	Admin    Level = "ADMIN"
)

var levelRank = map[Level]int{
	ViewOnly: 1,
	Edit:     2,
	Admin:    3,
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// AtLeast reports whether l satisfies a minimum level. EDIT and ADMIN both
// satisfy an EDIT minimum; only ADMIN satisfies ADMIN.
func (l Level) AtLeast(min Level) bool {
	return levelRank[l] >= levelRank[min]
}
