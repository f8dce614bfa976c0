package model

import (
	"strings"
	"time"
)

// VendorSource indicates how a vendor rule was created.
type VendorSource string

const (
	// VendorManual rules come from a user re-categorizing a transaction.
	VendorManual VendorSource = "manual"
	// VendorImported rules come from a rules file.
	VendorImported VendorSource = "imported"
)

// Vendor remembers the category of a counter-party the business deals with.
// Name is a VendorKey: a paybill or till number, else an upper-cased name or phone.
type Vendor struct {
	LastUpdated time.Time
	Name        string
	Category    string
	Source      VendorSource
	UseCount    int
}

// VendorKey identifies the counter-party of txn for vendor rules.
// It returns "" when the record names no counter-party.
func VendorKey(txn Transaction) string {
	if txn.BusinessShortCode != "" {
		return txn.BusinessShortCode
	}
	if name := strings.TrimSpace(txn.CounterpartyName()); name != "" {
		return strings.ToUpper(strings.Join(strings.Fields(name), " "))
	}
	if txn.SenderPhone != "" {
		return txn.SenderPhone
	}
	return txn.RecipientPhone
}
