package protocol

import (
	"errors"
	"strings"
	"testing"

	"foosball/game"
)

func TestEncodeDecodeGoalScored(t *testing.T) {
	b, err := Encode(TypeGoalScored, GoalScored{RoomID: "K3ZQ8A", Team: game.TeamAway})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.Contains(string(b), `"type":"goal_scored"`) {
		t.Fatalf("expected type field in %s", b)
	}

	env, err := Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if env.Type != TypeGoalScored {
		t.Fatalf("expected goal_scored, got %q", env.Type)
	}
	var gs GoalScored
	if err := env.DecodeData(&gs); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if gs.RoomID != "K3ZQ8A" || gs.Team != game.TeamAway {
		t.Fatalf("unexpected payload %+v", gs)
	}
}

func TestEncodeWithoutPayloadOmitsData(t *testing.T) {
	b := MustEncode(TypeBallReset, nil)
	if string(b) != `{"type":"ball_reset"}` {
		t.Fatalf("unexpected frame %s", b)
	}
	env, err := Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	var ref RoomRef
	if err := env.DecodeData(&ref); err != nil {
		t.Fatalf("expected empty data to decode cleanly, got %v", err)
	}
	if ref.RoomID != "" {
		t.Fatalf("expected zero payload, got %+v", ref)
	}
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	if _, err := Decode([]byte(`{"data":{}}`)); !errors.Is(err, ErrMissingType) {
		t.Fatalf("expected ErrMissingType, got %v", err)
	}
	env, err := Decode([]byte(`{"type":"input_change","data":{"controls":"up"}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	var in InputChange
	if err := env.DecodeData(&in); err == nil {
		t.Fatalf("expected payload type mismatch error")
	}
}

func TestControlStateWireFormat(t *testing.T) {
	b := MustEncode(TypeInputChange, InputChange{RoomID: "AAAAAA", Controls: game.ControlState{Forward: true, RotateLeft: true}})
	want := `{"type":"input_change","data":{"roomId":"AAAAAA","controls":{"forward":true,"backward":false,"rotateLeft":true,"rotateRight":false}}}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}
}
