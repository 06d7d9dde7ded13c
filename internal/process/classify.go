package process

import "strings"

// docSignatures map document types to the keywords that identify them.
// First match wins, so more specific documents come before generic ones.
var docSignatures = []struct {
	doctype  string
	keywords []string
}{
	{"aadhaar_card", []string{"aadhaar", "unique identification authority", "uidai"}},
	{"pan_card", []string{"permanent account number", "income tax department"}},
	{"passport", []string{"passport", "republic of india"}},
	{"driving_license", []string{"driving licence", "driving license", "transport department"}},
	{"credit_card", []string{"valid thru", "credit card", "debit card"}},
	{"bank_statement", []string{"account statement", "statement of account", "ifsc", "opening balance"}},
	{"medical_record", []string{"patient", "diagnosis", "prescription", "blood group"}},
	{"payslip", []string{"payslip", "salary slip", "net pay", "gross salary"}},
	{"invoice", []string{"invoice", "gstin", "bill to"}},
}

// ClassifyDocument guesses the document type from extracted text, or
// "unknown". The guess is informational only; it never changes what gets
// redacted.
func ClassifyDocument(text string) string {
	lower := strings.ToLower(text)
	for _, sig := range docSignatures {
		for _, kw := range sig.keywords {
			if strings.Contains(lower, kw) {
				return sig.doctype
			}
		}
	}
	return "unknown"
}
