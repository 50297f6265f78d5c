package authorship

// IsCharSubset reports whether every rune of candidate, counted with
// multiplicity, occurs in reference at least as often.
func IsCharSubset(candidate, reference string) bool {
	if candidate == "" {
		return true
	}
	if reference == "" {
		return false
	}

	counts := make(map[rune]int, len(reference))
	for _, r := range reference {
		counts[r]++
	}
	for _, r := range candidate {
		if counts[r] == 0 {
			return false
		}
		counts[r]--
	}
	return true
}
