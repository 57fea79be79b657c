package enums

import "fmt"

// CompanyType distinguishes carrier companies from dispatch companies.
type CompanyType string

const (
	CompanyTypeCarrier  CompanyType = "carrier"
	CompanyTypeDispatch CompanyType = "dispatch"
)

var validCompanyTypes = []CompanyType{
	CompanyTypeCarrier,
	CompanyTypeDispatch,
}

// String implements fmt.Stringer.
func (c CompanyType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CompanyType.
func (c CompanyType) IsValid() bool {
	for _, candidate := range validCompanyTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCompanyType converts raw input into a CompanyType.
func ParseCompanyType(value string) (CompanyType, error) {
	for _, candidate := range validCompanyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid company type %q", value)
}
