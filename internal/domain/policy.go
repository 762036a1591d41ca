package domain

// CopyrightLevel is a company's stance towards fan and derivative content.
// Higher values are more restrictive.
type CopyrightLevel int

const (
	CopyrightNone CopyrightLevel = iota
	CopyrightModFriendly
	CopyrightModerate
	CopyrightAggressive
	CopyrightBlockAll
)

// String returns the storage name of the level.
func (l CopyrightLevel) String() string {
	switch l {
	case CopyrightModFriendly:
		return "mod_friendly"
	case CopyrightModerate:
		return "moderate"
	case CopyrightAggressive:
		return "aggressive"
	case CopyrightBlockAll:
		return "block_all"
	default:
		return "none"
	}
}

// ParseCopyrightLevel converts a storage name back to a level.
func ParseCopyrightLevel(s string) (CopyrightLevel, bool) {
	switch s {
	case "none":
		return CopyrightNone, true
	case "mod_friendly":
		return CopyrightModFriendly, true
	case "moderate":
		return CopyrightModerate, true
	case "aggressive":
		return CopyrightAggressive, true
	case "block_all":
		return CopyrightBlockAll, true
	default:
		return CopyrightNone, false
	}
}

// CompanyPolicy is the copyright stance of one company.
type CompanyPolicy struct {
	Company string         `json:"company"`
	Level   CopyrightLevel `json:"level"`
	Reason  string         `json:"reason,omitempty"`
}

// PolicyDecision is the outcome of the content policy filter for one candidate.
type PolicyDecision struct {
	Suppress bool
	Level    CopyrightLevel
	Reason   string
}
