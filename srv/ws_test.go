package srv

import (
	"encoding/json"
	"testing"
)

func TestInboundLobbyJoinReadsRoomField(t *testing.T) {
	var msg inbound
	if err := json.Unmarshal([]byte(`{"type":"lobby:join","room":"KITCHEN","name":"Ann"}`), &msg); err != nil {
		t.Fatalf("unmarshal lobby:join: %v", err)
	}
	if msg.roomCode() != "KITCHEN" {
		t.Errorf("lobby:join room field should name the room to join, got %q", msg.roomCode())
	}
}

func TestInboundRoomCodeAcceptsCodeAlias(t *testing.T) {
	var msg inbound
	if err := json.Unmarshal([]byte(`{"type":"lobby:join","code":"KITCHEN","name":"Ann"}`), &msg); err != nil {
		t.Fatalf("unmarshal lobby:join: %v", err)
	}
	if msg.roomCode() != "KITCHEN" {
		t.Errorf("code should work as an alias when room is absent, got %q", msg.roomCode())
	}

	both := inbound{Room: "ONE", Code: "TWO"}
	if both.roomCode() != "ONE" {
		t.Errorf("room should win over the code alias, got %q", both.roomCode())
	}
}

func TestInboundRoomCodeStaysOpaque(t *testing.T) {
	msg := inbound{Room: "  abc  "}
	if got := msg.roomCode(); got != "abc" {
		t.Errorf("codes are opaque: trim whitespace but never case-fold, got %q", got)
	}
}
