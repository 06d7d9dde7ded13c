// Package patterns holds the catalogue of sensitive-data detectors.
//
// Detection is pattern-based and deliberately heuristic: false positives are
// acceptable, and false negatives remain a residual risk (there is no attempt
// at perfect PII recall). The built-in table mirrors the identifier formats
// the cleanser was built against: Indian and US government documents, card
// networks, banking, contact details, network addresses, secrets, and a set
// of keyword-anchored fields.
package patterns

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/BurntSushi/toml"
)

// ErrInvalidPattern is returned when a custom pattern fails to compile.
var ErrInvalidPattern = errors.New("patterns: invalid pattern")

// builtin describes one entry of the built-in table before compilation.
type builtin struct {
	name string
	cat  Category
	expr string
	// caseSensitive is set for structured alphanumeric identifiers whose
	// letter case is part of the format (e.g. PAN, IFSC, JWT header).
	caseSensitive bool
}

var builtins = []builtin{
	// Indian government documents.
	{"aadhaar_spaced", CategoryIdentity, `\b\d{4}\s+\d{4}\s+\d{4}\b`, false},
	{"aadhaar_compact", CategoryIdentity, `\b\d{12}\b`, false},
	{"aadhaar_masked", CategoryIdentity, `\b[X*]{8}\d{4}\b`, true},
	{"pan_card", CategoryIdentity, `\b[A-Z]{5}\d{4}[A-Z]\b`, true},
	{"voter_id", CategoryIdentity, `\b[A-Z]{3}\d{7}\b`, true},
	{"passport", CategoryIdentity, `\b[A-Z]\d{7}\b`, true},
	{"driving_license", CategoryIdentity, `\b[A-Z]{2}\d{13,14}\b`, true},
	{"gstin", CategoryIdentity, `\b\d{2}[A-Z]{5}\d{4}[A-Z]\d[Z][A-Z\d]\b`, true},

	// US documents.
	{"ssn", CategoryIdentity, `\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`, false},
	{"ssn_masked", CategoryIdentity, `\b[X*]{3}[-\s]?[X*]{2}[-\s]?\d{4}\b`, false},
	{"us_passport", CategoryIdentity, `\b[Cc]?\d{9}\b`, true},
	{"ein", CategoryIdentity, `\b\d{2}[-\s]?\d{7}\b`, false},

	// Card numbers, major networks plus a generic fallback. The bare 3-4
	// digit CVV pattern is intentionally absent: it matches every short
	// number and callers who want it can register it as a custom pattern.
	{"visa", CategoryFinancial, `\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, false},
	{"mastercard", CategoryFinancial, `\b5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, false},
	{"amex", CategoryFinancial, `\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`, false},
	{"discover", CategoryFinancial, `\b6011[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, false},
	{"rupay", CategoryFinancial, `\b6\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, false},
	{"credit_card_generic", CategoryFinancial, `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, false},

	// Banking.
	{"iban", CategoryFinancial, `\b[A-Z]{2}\d{2}[A-Z0-9]{4}\d{7}(?:[A-Z0-9]?){0,16}\b`, true},
	{"swift_code", CategoryFinancial, `\b[A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`, true},
	{"account_number", CategoryFinancial, `\b(?:A/C|ACC|ACCT|ACCOUNT)[-:\s]?\d{8,18}\b`, false},
	{"ifsc_code", CategoryFinancial, `\b[A-Z]{4}0[A-Z0-9]{6}\b`, true},
	{"routing_number", CategoryFinancial, `\b\d{9}\b`, false},

	// Contact details.
	{"email", CategoryContact, `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, false},
	{"email_obfuscated", CategoryContact, `\b[A-Za-z0-9._%+-]+\s*(?:@|\[at\]|\(at\))\s*[A-Za-z0-9.-]+\s*(?:\.|\[dot\]|\(dot\))\s*[A-Za-z]{2,}\b`, false},
	{"indian_mobile", CategoryContact, `\b(?:\+91[-\s]?)?[6-9]\d{9}\b`, false},
	{"us_phone", CategoryContact, `\b(?:\+1[-\s]?)?\(?\d{3}\)?[-\s]?\d{3}[-\s]?\d{4}\b`, false},
	{"uk_phone", CategoryContact, `\b(?:\+44[-\s]?)?(?:0|\(0\))?\d{4}[-\s]?\d{6}\b`, false},
	{"generic_phone", CategoryContact, `\b(?:\+\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{4,6}\b`, false},

	// Network addresses.
	{"ipv4", CategoryNetwork, `\b(?:\d{1,3}\.){3}\d{1,3}\b`, false},
	{"ipv6", CategoryNetwork, `\b(?:[A-Fa-f0-9]{1,4}:){7}[A-Fa-f0-9]{1,4}\b`, false},
	{"ipv6_compressed", CategoryNetwork, `\b(?:[A-Fa-f0-9]{1,4}:){1,7}:`, false},
	{"mac_address", CategoryNetwork, `\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`, false},
	{"subnet_mask", CategoryNetwork, `\b(?:\d{1,3}\.){3}\d{1,3}/\d{1,2}\b`, false},

	// Dates.
	{"date_dmy", CategoryDate, `\b\d{1,2}[-/]\d{1,2}[-/]\d{4}\b`, false},
	{"date_ymd", CategoryDate, `\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`, false},
	{"date_iso", CategoryDate, `\b\d{4}-\d{2}-\d{2}\b`, false},
	{"date_with_time", CategoryDate, `\b\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\b`, false},

	// URLs.
	{"url_http", CategoryNetwork, `https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`, false},
	{"url_ftp", CategoryNetwork, `ftp://[^\s<>"{}|\\^` + "`" + `\[\]]+`, false},

	// Secrets.
	{"password_field", CategorySecret, `(?i)(?:password|passwd|pwd)[\s:=]+[^\s]+`, true},
	{"api_key", CategorySecret, `(?i)(?:api[_-]?key|apikey)[\s:=]+[A-Za-z0-9_\-]{16,}`, true},
	{"secret_key", CategorySecret, `(?i)(?:secret[_-]?key|secretkey)[\s:=]+[A-Za-z0-9_\-]{16,}`, true},
	{"token", CategorySecret, `(?i)(?:token|bearer)[\s:=]+[A-Za-z0-9_\-\.]{16,}`, true},
	{"jwt", CategorySecret, `\beyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`, true},
	{"private_key", CategorySecret, `-----BEGIN (?:RSA |EC |DSA )?PRIVATE KEY-----`, true},

	// Medical identifiers.
	{"medicare", CategoryIdentity, `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?[A-Z]\b`, true},
	{"medical_record", CategoryIdentity, `\b(?:MRN|MR|MEDICAL\s+RECORD)[-:\s]?\d{6,10}\b`, false},

	// Postal codes.
	{"zipcode_us", CategoryLocation, `\b\d{5}(?:-\d{4})?\b`, false},
	{"postal_code_uk", CategoryLocation, `\b[A-Z]{1,2}\d{1,2}[A-Z]?\s?\d[A-Z]{2}\b`, true},
	{"pincode_india", CategoryLocation, `\b\d{6}\b`, false},

	// Biometric identifiers.
	{"fingerprint_id", CategoryBiometric, `\bFP[-_]?\d{8,12}\b`, false},
	{"iris_id", CategoryBiometric, `\bIRIS[-_]?\d{8,12}\b`, false},

	// Cryptocurrency.
	{"bitcoin_address", CategoryFinancial, `\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`, true},
	{"ethereum_address", CategoryFinancial, `\b0x[a-fA-F0-9]{40}\b`, true},

	// Vehicles.
	{"vin", CategoryIdentity, `\b[A-HJ-NPR-Z0-9]{17}\b`, true},
	{"license_plate", CategoryIdentity, `\b[A-Z]{2}[-\s]?\d{2}[-\s]?[A-Z]{1,2}[-\s]?\d{4}\b`, true},

	// Tax.
	{"tax_id", CategoryFinancial, `\b\d{2}[-\s]?\d{7}\b`, false},

	// Coordinates.
	{"gps_coordinates", CategoryLocation, `\b[-+]?\d{1,3}\.\d+,\s*[-+]?\d{1,3}\.\d+\b`, false},

	// Keyword-anchored fields.
	{"name_after_keyword", CategoryIdentity, `(?i)(?:name|naam)[\s:=-]+[A-Za-z\s]{2,50}`, true},
	{"father_name", CategoryIdentity, `(?i)father[\s:=-]+[A-Za-z\s]{2,50}`, true},
	{"mother_name", CategoryIdentity, `(?i)mother[\s:=-]+[A-Za-z\s]{2,50}`, true},

	// Employee/student identifiers.
	{"employee_id", CategoryOther, `\b(?:EMP|EMPLOYEE|STAFF)[-_]?\d{4,8}\b`, false},
	{"student_id", CategoryOther, `\b(?:STU|STUDENT|ROLL)[-_]?\d{4,8}\b`, false},
	{"badge_number", CategoryOther, `\b(?:BADGE|ID)[-_]?\d{4,8}\b`, false},
}

// Registry maps pattern names to compiled detectors. Reads are lock-free
// copies; custom registration is the only mutation and is serialized.
type Registry struct {
	mu       sync.RWMutex
	patterns map[string]Pattern
}

// New builds a registry containing the built-in catalogue.
func New() *Registry {
	r := &Registry{patterns: make(map[string]Pattern, len(builtins))}
	for _, b := range builtins {
		expr := b.expr
		if !b.caseSensitive {
			expr = "(?i)" + expr
		}
		// Built-ins are fixed strings; a compile failure here is a
		// programming error, not an input error.
		r.patterns[b.name] = Pattern{
			Name:     b.name,
			Category: b.cat,
			Regex:    regexp.MustCompile(expr),
		}
	}
	return r
}

// Patterns returns a snapshot of the registry. The returned map is owned by
// the caller; mutating it does not affect the registry.
func (r *Registry) Patterns() map[string]Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Pattern, len(r.patterns))
	for name, p := range r.patterns {
		out[name] = p
	}
	return out
}

// Get returns the pattern registered under name.
func (r *Registry) Get(name string) (Pattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patterns[name]
	return p, ok
}

// Len reports the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// RegisterCustom compiles raw and inserts it under name, overwriting any
// existing pattern with the same name (upsert semantics). The pattern is
// compiled exactly as given; prepend (?i) for case-insensitive matching.
func (r *Registry) RegisterCustom(name, raw string) error {
	re, err := regexp.Compile(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[name] = Pattern{Name: name, Category: CategoryOther, Regex: re, Custom: true}
	return nil
}

// patternsFile is the on-disk shape of a custom patterns file.
type patternsFile struct {
	Patterns map[string]string `toml:"patterns"`
}

// LoadFile merges custom patterns from a TOML file into the registry.
// The file holds a single [patterns] table of name = "expression" entries.
// The first compile failure aborts the load and is returned.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("patterns: reading %s: %w", path, err)
	}
	var pf patternsFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("patterns: parsing %s: %w", path, err)
	}
	for name, raw := range pf.Patterns {
		if err := r.RegisterCustom(name, raw); err != nil {
			return err
		}
	}
	return nil
}
