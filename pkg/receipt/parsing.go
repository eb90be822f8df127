package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// currency-marked amounts: "Rp 1.500.000", "Rp1500000", "RP. 500,000"
	rpRE = regexp.MustCompile(`(?i)rp\.?\s*([0-9]{1,3}(?:[.,][0-9]{3})+(?:[.,][0-9]{2})?|[0-9]{3,12})`)
	// bare grouped numbers: "1.500.000" or "1.500.000,00"
	groupedRE = regexp.MustCompile(`\b[0-9]{1,3}(?:[.,][0-9]{3})+(?:[.,][0-9]{2})?\b`)
	// a trailing decimal part of exactly two digits
	centsRE = regexp.MustCompile(`[.,][0-9]{2}$`)
)

// AmountCandidates scans OCR text for strings that look like rupiah amounts.
// Currency-marked matches come first, then bare grouped numbers.
func AmountCandidates(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	for _, m := range rpRE.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range groupedRE.FindAllString(text, -1) {
		add(m)
	}
	return out
}

// ParseAmount normalizes a matched substring into whole rupiah. A trailing
// decimal part of exactly two digits is dropped (10.000,00 -> 10000).
func ParseAmount(found string) (int64, error) {
	foundTrim := strings.TrimSpace(found)
	if foundTrim == "" {
		return 0, fmt.Errorf("empty")
	}
	var digits string
	if centsRE.MatchString(foundTrim) {
		lastDot := strings.LastIndex(foundTrim, ".")
		lastComma := strings.LastIndex(foundTrim, ",")
		if lastComma > lastDot {
			digits = onlyDigits(foundTrim[:lastComma])
		} else {
			digits = onlyDigits(foundTrim[:lastDot])
		}
	} else {
		digits = onlyDigits(foundTrim)
	}
	if digits == "" {
		return 0, fmt.Errorf("no digits extracted from %q", found)
	}
	amt, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", digits, err)
	}
	if amt < 0 {
		amt = -amt
	}
	return amt, nil
}

// BestAmount picks the most plausible amount from OCR text: the largest
// parsed candidate. On a transfer receipt the total is the dominant figure;
// smaller matches are fees, dates or reference fragments.
func BestAmount(text string) (int64, string, bool) {
	var best int64
	var bestRaw string
	for _, cand := range AmountCandidates(text) {
		amt, err := ParseAmount(cand)
		if err != nil || amt == 0 {
			continue
		}
		if amt > best {
			best = amt
			bestRaw = cand
		}
	}
	return best, bestRaw, best > 0
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
