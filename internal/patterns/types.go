package patterns

import "regexp"

// Category classifies what kind of sensitive data a pattern detects.
type Category string

const (
	CategoryIdentity  Category = "identity"
	CategoryFinancial Category = "financial"
	CategoryContact   Category = "contact"
	CategoryNetwork   Category = "network"
	CategorySecret    Category = "secret"
	CategoryDate      Category = "date"
	CategoryBiometric Category = "biometric"
	CategoryLocation  Category = "location"
	CategoryOther     Category = "other"
)

// Pattern is a single named detector. Immutable once built.
type Pattern struct {
	// Name uniquely identifies the pattern, e.g. "email" or "pan_card".
	Name string
	// Category groups patterns for reporting and selective disabling.
	Category Category
	// Regex is the compiled expression. Patterns compile case-insensitively
	// unless the detector targets a structured, case-significant identifier.
	Regex *regexp.Regexp
	// Custom marks patterns registered at runtime rather than built in.
	Custom bool
}
