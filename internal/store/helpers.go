package store

func derefStringPtr(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
