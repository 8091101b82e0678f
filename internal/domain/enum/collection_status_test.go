package enum

import (
	"encoding/json"
	"testing"
)

func TestCollectionStatusString(t *testing.T) {
	cases := map[CollectionStatus]string{
		CollectionStatusOpen:      "Open",
		CollectionStatusSubmitted: "Submitted",
		CollectionStatusApproved:  "Approved",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("String(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestCollectionStatusJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(CollectionStatusSubmitted)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"Submitted"` {
		t.Errorf("expected \"Submitted\", got %s", data)
	}

	var status CollectionStatus
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status != CollectionStatusSubmitted {
		t.Errorf("expected Submitted, got %v", status)
	}

	// Numeric form is accepted too
	if err := json.Unmarshal([]byte("2"), &status); err != nil {
		t.Fatalf("unmarshal numeric: %v", err)
	}
	if status != CollectionStatusApproved {
		t.Errorf("expected Approved, got %v", status)
	}
}

func TestCollectionStatusIsValid(t *testing.T) {
	if !CollectionStatusOpen.IsValid() {
		t.Error("Open should be valid")
	}
	if CollectionStatus(7).IsValid() {
		t.Error("7 should be invalid")
	}
}
