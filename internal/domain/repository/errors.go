package repository

import "errors"

// Sentinel errors returned by ledger stores. Services translate these into
// API-facing errors; stores never shape HTTP responses themselves.
var (
	// ErrCollectionNotFound means no collection matched the id within the caller's tenant
	ErrCollectionNotFound = errors.New("cash collection not found")
	// ErrCollectionNotOpen means a posting was attempted against a submitted or approved collection
	ErrCollectionNotOpen = errors.New("cash collection is not open")
	// ErrCollectionNotSubmitted means an approval was attempted outside the Submitted state
	ErrCollectionNotSubmitted = errors.New("cash collection is not submitted")
	// ErrOpenCollectionExists means the agent already has an open collection for this tenant
	ErrOpenCollectionExists = errors.New("agent already has an open cash collection")
	// ErrSaleNotFound means no sale matched the id within the caller's tenant
	ErrSaleNotFound = errors.New("sale not found")
	// ErrSaleAlreadyLinked means the sale's cash was already posted to a collection
	ErrSaleAlreadyLinked = errors.New("sale is already linked to a cash collection")
)
