package enrich

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var phoneStripper = strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "", "-", "", "(", "", ")", "", "+", "")

// validPhone needs at least ten characters, all digits, once formatting
// characters are removed.
func validPhone(p string) bool {
	cleaned := phoneStripper.Replace(strings.TrimSpace(p))
	if len(cleaned) < 10 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// toE164 returns "" when the number cannot be parsed or is not a real number
// for the region.
func toE164(p, region string) string {
	num, err := phonenumbers.Parse(strings.TrimSpace(p), region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
