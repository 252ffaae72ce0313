package event

import (
	"regexp"
	"strconv"
	"strings"
)

var priceAmountPattern = regexp.MustCompile(`[¥￥]?\s*([0-9][0-9,]{0,9})\s*(?:円|yen)?`)

// advance-price markers as they appear on Japanese venue pages.
var advanceMarkers = []string{"前売", "adv", "前売り"}

// ParsePrice derives a numeric advance price in yen from free price text.
// It prefers an amount explicitly marked as the advance price; failing that
// it accepts a lone amount. Several unmarked amounts are ambiguous and
// yield nil; a price is never guessed.
func ParsePrice(text string) *int {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	matches := priceAmountPattern.FindAllStringSubmatchIndex(lower, -1)
	var amounts []int
	var markedAmounts []int

	for _, m := range matches {
		raw := strings.ReplaceAll(lower[m[2]:m[3]], ",", "")
		n, err := strconv.Atoi(raw)
		if err != nil || n == 0 {
			continue
		}
		amounts = append(amounts, n)
		if markedAdvance(lower[:m[0]]) {
			markedAmounts = append(markedAmounts, n)
		}
	}

	if len(markedAmounts) > 0 {
		return &markedAmounts[0]
	}
	if len(amounts) == 1 {
		return &amounts[0]
	}
	return nil
}

// markedAdvance reports whether the text immediately preceding an amount
// carries an advance-price marker.
func markedAdvance(prefix string) bool {
	const window = 12
	runes := []rune(prefix)
	if len(runes) > window {
		runes = runes[len(runes)-window:]
	}
	tail := string(runes)
	for _, marker := range advanceMarkers {
		if strings.Contains(tail, marker) {
			return true
		}
	}
	return false
}
