package util

// UniqueStrings removes duplicates and empty values, preserving first-seen
// order.
func UniqueStrings(values []string) []string {
	presentStrings := make(map[string]bool)
	var list []string

	for _, item := range values {
		if !presentStrings[item] && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}

	return list
}
