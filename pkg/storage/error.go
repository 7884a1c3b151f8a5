package storage

// NotFoundError is returned when no note exists for a fingerprint.
type NotFoundError struct {
	Fingerprint string
}

func (e NotFoundError) Error() string {
	if e.Fingerprint == "" {
		return "note not found"
	}

	return "note not found: " + e.Fingerprint
}

// DuplicateError is returned when an append would violate fingerprint
// uniqueness. It is distinguishable from generic store failures so callers
// can surface an "already recorded" rejection instead of an error.
type DuplicateError struct {
	Fingerprint string
}

func (e DuplicateError) Error() string {
	if e.Fingerprint == "" {
		return "duplicate note"
	}

	return "duplicate note: " + e.Fingerprint
}
