package models

import (
	"encoding/json"
	"time"
)

// Event is a Move event as persisted by the indexer.
type Event struct {
	TxDigest          string          `json:"txDigest"`
	EventSeq          int64           `json:"eventSeq"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson,omitempty"`
	BCS               string          `json:"bcs,omitempty"`
	EmittedAt         *time.Time      `json:"emittedAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Cursor is the position after the last persisted event.
type Cursor struct {
	TxDigest string `json:"txDigest"`
	EventSeq uint64 `json:"eventSeq"`
}
