package audit

// Severity is a totally ordered classification of an AuditEvent's
// importance. Zero value is SeverityInfo.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity as its lowercase name so the chain log
// and indexed store both store a stable, human-readable token.
func (s Severity) MarshalJSON() ([]byte, error) {
	return quoteJSON(s.String()), nil
}

// UnmarshalJSON parses a severity name back into its ordinal, rejecting
// unknown tokens per the closed-enumeration contract.
func (s *Severity) UnmarshalJSON(b []byte) error {
	name, err := unquoteJSON(b)
	if err != nil {
		return err
	}
	switch name {
	case "info":
		*s = SeverityInfo
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	case "critical":
		*s = SeverityCritical
	default:
		return newDeserializationError("severity", name)
	}
	return nil
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool { return s >= other }
