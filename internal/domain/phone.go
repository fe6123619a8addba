package domain

import "regexp"

var (
	phoneStrip   = regexp.MustCompile(`[^\d+]`)
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

// Phone is an E.164-style number. Non-digit characters except the leading
// plus are stripped before validation.
type Phone struct {
	value string
}

func NewPhone(raw string) (Phone, error) {
	normalized := phoneStrip.ReplaceAllString(raw, "")
	if !phonePattern.MatchString(normalized) {
		return Phone{}, ErrInvalidPhone(raw)
	}
	return Phone{value: normalized}, nil
}

func StoredPhone(value string) Phone {
	return Phone{value: value}
}

func (p Phone) Value() string {
	return p.value
}

func (p Phone) Equals(other Phone) bool {
	return p.value == other.value
}

func (p Phone) String() string {
	return p.value
}
