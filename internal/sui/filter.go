package sui

import "encoding/json"

type MoveModule struct {
	Package string `json:"package"`
	Module  string `json:"module"`
}

// EventFilter selects events for QueryEvents and SubscribeEvents. Exactly one
// field is sent; when several are set the first in declaration order wins.
type EventFilter struct {
	MoveEventType   string
	MoveEventModule *MoveModule
	MoveModule      *MoveModule
	Sender          string
	Transaction     string
}

func (f EventFilter) IsEmpty() bool {
	return f.MoveEventType == "" && f.MoveEventModule == nil && f.MoveModule == nil &&
		f.Sender == "" && f.Transaction == ""
}

func (f EventFilter) MarshalJSON() ([]byte, error) {
	switch {
	case f.MoveEventType != "":
		return json.Marshal(map[string]string{"MoveEventType": f.MoveEventType})
	case f.MoveEventModule != nil:
		return json.Marshal(map[string]*MoveModule{"MoveEventModule": f.MoveEventModule})
	case f.MoveModule != nil:
		return json.Marshal(map[string]*MoveModule{"MoveModule": f.MoveModule})
	case f.Sender != "":
		return json.Marshal(map[string]string{"Sender": f.Sender})
	case f.Transaction != "":
		return json.Marshal(map[string]string{"Transaction": f.Transaction})
	}
	return nil, ErrEmptyFilter
}
