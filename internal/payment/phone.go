package payment

import (
	"regexp"
	"strings"
)

var msisdnRe = regexp.MustCompile(`^\+27[0-9]{9}$`)

// NormalizePhone validates a South African mobile number and returns it in
// canonical +27XXXXXXXXX form. Accepted inputs are 0XXXXXXXXX, 27XXXXXXXXX
// and +27XXXXXXXXX, with optional spaces or hyphens.
func NormalizePhone(input string) (string, error) {
	clean := strings.NewReplacer(" ", "", "-", "", "\t", "").Replace(strings.TrimSpace(input))
	if clean == "" {
		return "", &Error{Kind: KindFormat, Detail: "empty number"}
	}

	digits := strings.TrimPrefix(clean, "+")
	if !strings.HasPrefix(digits, "27") && strings.HasPrefix(digits, "0") {
		digits = "27" + digits[1:]
	}

	msisdn := "+" + digits
	if !msisdnRe.MatchString(msisdn) {
		return "", &Error{Kind: KindFormat, Detail: "use 0XXXXXXXXX or +27XXXXXXXXX"}
	}
	return msisdn, nil
}
