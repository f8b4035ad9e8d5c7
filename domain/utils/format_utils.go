package utils

import (
	"fmt"
	"strconv"
	"strings"

	"lotterypay/domain/entities"
)

// FormatNumberSet joins one set as "3 - 11 - 19"
func FormatNumberSet(set []int) string {
	parts := make([]string, len(set))
	for i, n := range set {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " - ")
}

// FormatNumbers renders every set on its own line as "Ticket 1: 3 - 11 - 19"
func FormatNumbers(numbers entities.Numbers) string {
	lines := make([]string, len(numbers))
	for i, set := range numbers {
		lines[i] = fmt.Sprintf("Ticket %d: %s", i+1, FormatNumberSet(set))
	}
	return strings.Join(lines, "\n")
}

// Pluralize returns singular for 1 and plural otherwise
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
