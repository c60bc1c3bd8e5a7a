package changefeed

import (
	"encoding/json"
	"testing"
)

func TestChangeEventJSONShape(t *testing.T) {
	event := ChangeEvent{Ref: "A1", Display: "42", Kind: "set"}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded["ref"] != "A1" || decoded["display"] != "42" || decoded["kind"] != "set" {
		t.Errorf("decoded = %+v, want ref=A1 display=42 kind=set", decoded)
	}
}

func TestNewPublisherBindsAndCloses(t *testing.T) {
	pub, err := NewPublisher("tcp", "127.0.0.1", 0)
	if err != nil {
		t.Fatalf("NewPublisher returned error: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(ChangeEvent{Ref: "A1", Display: "1", Kind: "set"}); err != nil {
		t.Errorf("Publish returned error: %v", err)
	}
}
