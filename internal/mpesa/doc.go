// Package mpesa turns M-PESA notification messages into structured transactions.
// Messages are tried against an ordered catalog of complete templates, then a short list
// of partial templates, and finally a heuristic scavenger, stopping at the first tier that
// produces a result. Parsing never fails outright; every problem is reported in the
// returned outcome.
package mpesa
