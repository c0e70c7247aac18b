package models

import "errors"

var (
	ErrDataSourceNotFound   = errors.New("station data source not found")
	ErrDataSourceUnreadable = errors.New("station data source unreadable")
	ErrInvalidPostalCode    = errors.New("invalid postal code")
	ErrInvalidReport        = errors.New("invalid malfunction report")
	ErrLedgerStorage        = errors.New("malfunction ledger storage failure")
)
