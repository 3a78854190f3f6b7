package svxconf

import (
	"errors"
	"testing"
)

func TestNewNetNodeSeedsType(t *testing.T) {
	node, err := NewNetNode("NodeA", nil)
	if err != nil {
		t.Fatalf("NewNetNode error: %v", err)
	}

	items := node.Items()
	if len(items) != 1 {
		t.Fatalf("Expected exactly 1 seeded item, got %d", len(items))
	}
	if items[0].Name != "TYPE" || items[0].Value != "Net" {
		t.Errorf("Expected seed TYPE=Net, got %s=%s", items[0].Name, items[0].Value)
	}
}

func TestSetGetCaseInsensitive(t *testing.T) {
	node, err := NewNetNode("NodeA", nil)
	if err != nil {
		t.Fatalf("NewNetNode error: %v", err)
	}

	if err := node.Set("tcp_PORT", "5220"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	for _, key := range []string{"TCP_PORT", "tcp_port", "Tcp_Port"} {
		got, ok := node.Get(key)
		if !ok {
			t.Fatalf("Get(%q) reported missing", key)
		}
		if got != "5220" {
			t.Errorf("Get(%q) = %q, want 5220", key, got)
		}
	}

	if !node.HasOption("tcp_port") {
		t.Error("HasOption should match case-insensitively")
	}
	if node.HasOption("HOST") {
		t.Error("HasOption reported an unset option")
	}
}

func TestSetRejectsUnknownOption(t *testing.T) {
	node, err := NewNetNode("NodeA", nil)
	if err != nil {
		t.Fatalf("NewNetNode error: %v", err)
	}

	before := len(node.Items())

	err = node.Set("FREQUENCY", "145.600")
	if err == nil {
		t.Fatal("Expected validation error for unknown option")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if verr.Option != "FREQUENCY" {
		t.Errorf("ValidationError.Option = %q, want FREQUENCY", verr.Option)
	}

	if len(node.Items()) != before {
		t.Error("Record changed after failed Set")
	}
}

func TestConstructFromDataValidates(t *testing.T) {
	_, err := NewNetNode("NodeA", []Item{
		{Name: "host", Value: "localhost"},
		{Name: "bogus", Value: "x"},
	})
	if err == nil {
		t.Fatal("Expected validation error for bogus option in data")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
}

func TestItemsPreserveInsertionOrder(t *testing.T) {
	node, err := NewNetNode("NodeA", []Item{
		{Name: "type", Value: "Net"},
		{Name: "host", Value: "localhost"},
		{Name: "tcp_port", Value: "5220"},
	})
	if err != nil {
		t.Fatalf("NewNetNode error: %v", err)
	}

	// Overwriting an existing key must keep its position.
	if err := node.Set("HOST", "10.0.0.1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	// A new key lands at the end.
	if err := node.Set("codec", "SPEEX"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	want := []Item{
		{Name: "TYPE", Value: "Net"},
		{Name: "HOST", Value: "10.0.0.1"},
		{Name: "TCP_PORT", Value: "5220"},
		{Name: "CODEC", Value: "SPEEX"},
	}

	items := node.Items()
	if len(items) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %v, want %v", i, items[i], want[i])
		}
	}
}

func TestItemsSkipInternalKeys(t *testing.T) {
	base, err := newSection("Net", "NodeA", []string{"TYPE", "HOST", "_INTERNAL"}, nil)
	if err != nil {
		t.Fatalf("newSection error: %v", err)
	}
	if err := base.Set("_internal", "hidden"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := base.Set("HOST", "localhost"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	for _, item := range base.Items() {
		if item.Name == "_INTERNAL" {
			t.Error("Items returned an internal key")
		}
	}
}

func TestStringIdentifiesRecord(t *testing.T) {
	node, err := NewNetNode("ErenTurkay", nil)
	if err != nil {
		t.Fatalf("NewNetNode error: %v", err)
	}

	if got := node.String(); got != "<svxlink-Net: ErenTurkay>" {
		t.Errorf("String() = %q", got)
	}
}
