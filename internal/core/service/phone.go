package service

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/example/usermanagement/internal/core/domain"
)

// DefaultPhoneRegion is used to interpret numbers written without a
// country code.
const DefaultPhoneRegion = "BR"

// normalizePhone returns phone in E.164 form. Empty input stays empty.
func normalizePhone(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: phone %q is not a valid number", domain.ErrInvalidInput, phone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
