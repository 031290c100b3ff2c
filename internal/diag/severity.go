package diag

// Severity is the checker's report kind.
type Severity uint8

const (
	// SevNote is informational commentary attached to other findings.
	SevNote Severity = iota
	// SevWarning is a finding that does not prevent checking.
	SevWarning
	SevError
	// SevFatal aborts the checker run that produced it.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "NOTE"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}
