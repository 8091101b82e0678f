package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CollectionStatus represents the lifecycle state of a cash collection.
// Transitions are linear: Open -> Submitted -> Approved.
type CollectionStatus int

const (
	CollectionStatusOpen      CollectionStatus = 0
	CollectionStatusSubmitted CollectionStatus = 1
	CollectionStatusApproved  CollectionStatus = 2
)

func (s CollectionStatus) String() string {
	return [...]string{"Open", "Submitted", "Approved"}[s]
}

// IsValid reports whether the value is one of the known states
func (s CollectionStatus) IsValid() bool {
	return s >= CollectionStatusOpen && s <= CollectionStatusApproved
}

func (s CollectionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CollectionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CollectionStatus(i)
		return nil
	}
	switch str {
	case "Open":
		*s = CollectionStatusOpen
	case "Submitted":
		*s = CollectionStatusSubmitted
	case "Approved":
		*s = CollectionStatusApproved
	}
	return nil
}

func (s CollectionStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CollectionStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CollectionStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CollectionStatus(v)
	case int:
		*s = CollectionStatus(v)
	}
	return nil
}
