package gateway

import (
	"strings"

	"github.com/beifitycom/backend/internal/models"
)

// NormalizePhone converts a buyer-supplied phone number into the local
// 10-digit format the gateway requires (07XXXXXXXX / 01XXXXXXXX). Accepted
// inputs: international +254..., bare 254..., or local 0... forms.
func NormalizePhone(phone string) (string, error) {
	p := strings.TrimSpace(phone)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.TrimPrefix(p, "+")

	switch {
	case strings.HasPrefix(p, "254") && len(p) == 12:
		p = "0" + p[3:]
	case strings.HasPrefix(p, "0") && len(p) == 10:
		// already local
	default:
		return "", models.NewValidationError("phone", "must be +254..., 254... or a 10-digit 0... number")
	}

	if !allDigits(p) {
		return "", models.NewValidationError("phone", "contains non-digit characters")
	}
	// valid mobile prefixes are 07xx and 01xx
	if p[1] != '7' && p[1] != '1' {
		return "", models.NewValidationError("phone", "not a valid mobile number")
	}

	return p, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
