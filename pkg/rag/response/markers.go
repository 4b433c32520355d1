package response

import (
	"regexp"
	"strconv"
)

var markerPattern = regexp.MustCompile(`(?i)\[\s*doc\s*(\d+)\s*\]`)

// ParseMarkers returns the distinct [Doc N] numbers in order of first appearance.
func ParseMarkers(text string) []int {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(matches))
	markers := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		markers = append(markers, n)
	}
	return markers
}

// SplitMarkers separates markers that point at one of passageCount passages
// from those that do not.
func SplitMarkers(markers []int, passageCount int) (valid, dropped []int) {
	for _, n := range markers {
		if n >= 1 && n <= passageCount {
			valid = append(valid, n)
		} else {
			dropped = append(dropped, n)
		}
	}
	return valid, dropped
}
