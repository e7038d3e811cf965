package sui

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// RPC response types

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type rpcEventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

type rpcEvent struct {
	ID                rpcEventID      `json:"id"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson"`
	BCS               string          `json:"bcs"`
	TimestampMs       string          `json:"timestampMs"`
}

type rpcEventPage struct {
	Data        []rpcEvent  `json:"data"`
	NextCursor  *rpcEventID `json:"nextCursor"`
	HasNextPage bool        `json:"hasNextPage"`
}

type rpcCheckpoint struct {
	Epoch                    string   `json:"epoch"`
	SequenceNumber           string   `json:"sequenceNumber"`
	Digest                   string   `json:"digest"`
	NetworkTotalTransactions string   `json:"networkTotalTransactions"`
	PreviousDigest           string   `json:"previousDigest"`
	TimestampMs              string   `json:"timestampMs"`
	Transactions             []string `json:"transactions"`
}

// Parsed types

// EventID identifies an event by the transaction that emitted it and its
// position within that transaction. It doubles as the pagination cursor for
// QueryEvents.
type EventID struct {
	TxDigest string
	EventSeq uint64
}

func (id EventID) MarshalJSON() ([]byte, error) {
	return json.Marshal(rpcEventID{TxDigest: id.TxDigest, EventSeq: strconv.FormatUint(id.EventSeq, 10)})
}

func (id *EventID) UnmarshalJSON(b []byte) error {
	var raw rpcEventID
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	seq, err := parseUint64(raw.EventSeq)
	if err != nil {
		return err
	}
	*id = EventID{TxDigest: raw.TxDigest, EventSeq: seq}
	return nil
}

type Event struct {
	ID                EventID         `json:"id"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson,omitempty"`
	BCS               string          `json:"bcs,omitempty"`
	Timestamp         time.Time       `json:"timestamp"`
}

type EventPage struct {
	Events      []Event  `json:"data"`
	NextCursor  *EventID `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}

type Checkpoint struct {
	Epoch                    uint64    `json:"epoch"`
	SequenceNumber           uint64    `json:"sequenceNumber"`
	Digest                   string    `json:"digest"`
	PreviousDigest           string    `json:"previousDigest"`
	NetworkTotalTransactions uint64    `json:"networkTotalTransactions"`
	Timestamp                time.Time `json:"timestamp"`
	Transactions             []string  `json:"transactions"`
}

func parseUint64(v string) (uint64, error) {
	if v == "" {
		return 0, errors.New("empty int string")
	}
	return strconv.ParseUint(v, 10, 64)
}

// parseTimestampMs tolerates a missing timestamp, which fullnodes omit for
// events still in flight.
func parseTimestampMs(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func decodeEvent(ev rpcEvent) (Event, error) {
	seq, err := parseUint64(ev.ID.EventSeq)
	if err != nil {
		return Event{}, err
	}
	ts, err := parseTimestampMs(ev.TimestampMs)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:                EventID{TxDigest: ev.ID.TxDigest, EventSeq: seq},
		PackageID:         ev.PackageID,
		TransactionModule: ev.TransactionModule,
		Sender:            ev.Sender,
		Type:              ev.Type,
		ParsedJSON:        ev.ParsedJSON,
		BCS:               ev.BCS,
		Timestamp:         ts,
	}, nil
}

func decodeCheckpoint(cp rpcCheckpoint) (*Checkpoint, error) {
	epoch, err := parseUint64(cp.Epoch)
	if err != nil {
		return nil, err
	}
	seq, err := parseUint64(cp.SequenceNumber)
	if err != nil {
		return nil, err
	}
	total, err := parseUint64(cp.NetworkTotalTransactions)
	if err != nil {
		return nil, err
	}
	ts, err := parseTimestampMs(cp.TimestampMs)
	if err != nil {
		return nil, err
	}
	return &Checkpoint{
		Epoch:                    epoch,
		SequenceNumber:           seq,
		Digest:                   cp.Digest,
		PreviousDigest:           cp.PreviousDigest,
		NetworkTotalTransactions: total,
		Timestamp:                ts,
		Transactions:             cp.Transactions,
	}, nil
}
