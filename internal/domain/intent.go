package domain

// SearchIntent is the detected purpose of a free-text query.
type SearchIntent int

const (
	IntentFranchiseBrowse SearchIntent = iota
	IntentSpecificGame
	IntentGenreDiscovery
	IntentDeveloperSearch
	IntentYearSearch
	IntentPlatformSearch
)

// String returns the wire name of the intent.
func (i SearchIntent) String() string {
	switch i {
	case IntentSpecificGame:
		return "specific_game"
	case IntentFranchiseBrowse:
		return "franchise_browse"
	case IntentGenreDiscovery:
		return "genre_discovery"
	case IntentDeveloperSearch:
		return "developer_search"
	case IntentYearSearch:
		return "year_search"
	case IntentPlatformSearch:
		return "platform_search"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i SearchIntent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// IntentFranchiseBrowse, the classifier's default.
func (i *SearchIntent) UnmarshalText(b []byte) error {
	switch string(b) {
	case "specific_game":
		*i = IntentSpecificGame
	case "genre_discovery":
		*i = IntentGenreDiscovery
	case "developer_search":
		*i = IntentDeveloperSearch
	case "year_search":
		*i = IntentYearSearch
	case "platform_search":
		*i = IntentPlatformSearch
	default:
		*i = IntentFranchiseBrowse
	}
	return nil
}

// QualityThreshold returns the minimum quality score a candidate needs to survive
// filtering for this intent. Specific-game and franchise searches rank rather than
// filter, so their thresholds are low.
func (i SearchIntent) QualityThreshold() float64 {
	switch i {
	case IntentSpecificGame, IntentFranchiseBrowse:
		return 0.1
	case IntentGenreDiscovery:
		return 0.4
	case IntentDeveloperSearch, IntentYearSearch, IntentPlatformSearch:
		return 0.3
	default:
		return 0.1
	}
}

// MaxResults returns the default result cap for this intent.
func (i SearchIntent) MaxResults() int {
	switch i {
	case IntentSpecificGame:
		return 50
	case IntentFranchiseBrowse:
		return 200
	case IntentDeveloperSearch:
		return 150
	case IntentGenreDiscovery, IntentYearSearch, IntentPlatformSearch:
		return 100
	default:
		return 100
	}
}
