package ticket

import (
	"regexp"
	"unicode/utf8"
)

// establishmentWindow is how many leading lines may hold the merchant name
const establishmentWindow = 4

var (
	// header timestamps such as 10:42 or 12/05
	reTimeOfDay = regexp.MustCompile(`\d{2}[/:]\d{2}`)
	reDate      = regexp.MustCompile(`\d{1,2}[/\-.]\d{1,2}[/\-.](?:\d{4}|\d{2})`)
)

// DetectEstablishment returns the first of the leading lines that looks like
// a merchant name rather than a timestamp, receipt number or code.
func DetectEstablishment(lines []string) (string, bool) {
	for i, line := range lines {
		if i >= establishmentWindow {
			break
		}
		if utf8.RuneCountInString(line) <= 3 {
			continue
		}
		if reTimeOfDay.MatchString(line) {
			continue
		}
		if line[0] >= '0' && line[0] <= '9' {
			continue
		}
		return line, true
	}
	return "", false
}

// DetectDate returns the first date shaped token found in any line.
// The token is returned verbatim; 32/13/2024 is accepted.
func DetectDate(lines []string) (string, bool) {
	for _, line := range lines {
		if m := reDate.FindString(line); m != "" {
			return m, true
		}
	}
	return "", false
}
