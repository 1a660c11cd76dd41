package enums

import "fmt"

// DeletionReason records why a stored object was physically removed.
type DeletionReason string

const (
	DeletionReasonAutoExpiry      DeletionReason = "auto-expiry"
	DeletionReasonManualDelete    DeletionReason = "manual-delete"
	DeletionReasonOrphanedCleanup DeletionReason = "orphaned-cleanup"
)

var validDeletionReasons = []DeletionReason{
	DeletionReasonAutoExpiry,
	DeletionReasonManualDelete,
	DeletionReasonOrphanedCleanup,
}

// String implements fmt.Stringer.
func (d DeletionReason) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeletionReason.
func (d DeletionReason) IsValid() bool {
	for _, candidate := range validDeletionReasons {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeletionReason converts raw input into a DeletionReason.
func ParseDeletionReason(value string) (DeletionReason, error) {
	for _, candidate := range validDeletionReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deletion reason %q", value)
}
