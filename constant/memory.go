package constant

// =============================================
// Memory importance constants
// =============================================

// Importance weighs how much a memory should influence retrieval.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// String returns the importance as a string.
func (i Importance) String() string {
	return string(i)
}

// IsValid reports whether the importance is one of the known levels.
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return true
	}
	return false
}

// OrDefault returns the importance, falling back to medium when unset or unknown.
func (i Importance) OrDefault() Importance {
	if i.IsValid() {
		return i
	}
	return ImportanceMedium
}

// Rank orders importance for the keyword fallback sort: high > medium > low.
func (i Importance) Rank() int {
	switch i {
	case ImportanceHigh:
		return 3
	case ImportanceMedium:
		return 2
	case ImportanceLow:
		return 1
	}
	return 0
}
