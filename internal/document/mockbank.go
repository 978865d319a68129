package document

import (
	"strings"

	"aptic/pkg/domain"
)

// BankEntry is one mock artifact: a type label and its full text content.
type BankEntry struct {
	Type    string
	Content string
}

// RequiredTypes lists the fixed artifact slots for an entity type.
func RequiredTypes(entityType domain.EntityType) []string {
	if entityType == domain.EntityCompany {
		return []string{
			"KRA PIN Certificate",
			"CR12 (Company Search)",
			"Certificate of Incorporation",
		}
	}
	return []string{
		"KRA PIN Certificate",
		"National ID (Front)",
	}
}

// Bank returns the static document content table for an entity type. Uploads
// pull content from here; a real upload path would substitute this source
// while preserving the same state transition contract.
func Bank(entityType domain.EntityType) []BankEntry {
	if entityType == domain.EntityCompany {
		return companyBank
	}
	return individualBank
}

// Match finds the bank entry for a requested document type by case-insensitive
// prefix match of the type's first word, falling back to the first entry when
// nothing matches. The fallback keeps uploads deterministic for unknown labels.
func Match(bank []BankEntry, docType string) BankEntry {
	firstWord := docType
	if i := strings.IndexByte(firstWord, ' '); i >= 0 {
		firstWord = firstWord[:i]
	}
	firstWord = strings.ToLower(firstWord)
	for _, entry := range bank {
		if strings.Contains(strings.ToLower(entry.Type), firstWord) {
			return entry
		}
	}
	return bank[0]
}

var companyBank = []BankEntry{
	{
		Type: "Certificate of Incorporation",
		Content: `REPUBLIC OF KENYA - THE COMPANIES ACT, 2015
CERTIFICATE OF INCORPORATION
Company Name: SIMSTEL TECHNOLOGIES LIMITED
Registration Number: PVT-7UQ4K9
Date of Incorporation: 14th March 2021
Issued by the Registrar of Companies.`,
	},
	{
		Type: "CR12",
		Content: `COMPANY REGISTRY – CR12
Company Name: SIMSTEL TECHNOLOGIES LIMITED
Registration Number: PVT-7UQ4K9
Directors:
1. James Epale, ID: 31245678, KRA PIN: A012345678Z
2. Alice Wambui, ID: 29876543, KRA PIN: A098765432Y
Registered Office: P.O. Box 45678 – 00100, Nairobi, Kenya
Last Filed Return Date: 12th Jan 2024`,
	},
	{
		Type: "KRA PIN Certificate",
		Content: `KENYA REVENUE AUTHORITY - PIN CERTIFICATE
Taxpayer Name: SIMSTEL TECHNOLOGIES LIMITED
PIN: P051234567Q
Registration Date: 20th March 2021
iTax Platform Verification Code: 992-KLA-12`,
	},
}

var individualBank = []BankEntry{
	{
		Type: "National ID (Front)",
		Content: `REPUBLIC OF KENYA - IDENTITY CARD
Name: DAVID OTIENO NYONG'O
ID Number: 34567890
Date of Birth: 12.05.1992
Sex: M
Place of Issue: NAIROBI`,
	},
	{
		Type: "KRA PIN Certificate",
		Content: `KENYA REVENUE AUTHORITY - PIN CERTIFICATE
Taxpayer Name: DAVID OTIENO NYONG'O
PIN: A001928374M
Registration Date: 10th January 2015`,
	},
}
