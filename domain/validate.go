package domain

import (
	"strings"

	"github.com/fastygo/shopbot/pkg/textutil"
)

// CleanName normalizes a display name and checks it against max runes.
// field names the value in the error message ("currency name", "shop name", ...).
func CleanName(field, raw string, max int) (string, error) {
	name := textutil.Clean(raw)
	if name == "" || !textutil.HasVisibleText(name) {
		return "", Invalidf("the %s must contain letters or digits", field)
	}
	if textutil.RuneLen(name) > max {
		return "", Invalidf("the %s must be at most %d characters", field, max)
	}
	return name, nil
}

// CleanDescription trims a description and checks its length.
func CleanDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if textutil.RuneLen(desc) > DescriptionMax {
		return "", Invalidf("the description must be at most %d characters", DescriptionMax)
	}
	return desc, nil
}

// CheckDiscount validates a discount code and its percentage.
func CheckDiscount(code string, percent int) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" || textutil.RuneLen(code) > DiscountCodeMax {
		return "", Invalidf("the discount code must be 1 to %d characters", DiscountCodeMax)
	}
	if percent < 0 || percent > 100 {
		return "", Invalidf("the discount must be between 0 and 100 percent")
	}
	return code, nil
}
