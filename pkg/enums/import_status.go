package enums

import "fmt"

// ImportStatus is recorded on every import log entry.
type ImportStatus string

const (
	ImportStatusSuccess ImportStatus = "success"
	ImportStatusPartial ImportStatus = "partial"
	ImportStatusFailed  ImportStatus = "failed"
)

var validImportStatuses = []ImportStatus{
	ImportStatusSuccess,
	ImportStatusPartial,
	ImportStatusFailed,
}

func (s ImportStatus) String() string {
	return string(s)
}

func (s ImportStatus) IsValid() bool {
	for _, candidate := range validImportStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseImportStatus(value string) (ImportStatus, error) {
	for _, candidate := range validImportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import status %q", value)
}
