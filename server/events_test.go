package server

import (
	"testing"

	"foosball/game"
)

func TestNATSSubject(t *testing.T) {
	cases := []struct {
		prefix string
		ev     MatchEvent
		want   string
	}{
		{"foosball", MatchEvent{Kind: EventRoomCreated, RoomID: "AB12C"}, "foosball.rooms.AB12C.created"},
		{"foosball", MatchEvent{Kind: EventGoal, RoomID: "AB12C", Team: game.TeamHome}, "foosball.rooms.AB12C.goal"},
		{"arena.eu", MatchEvent{Kind: EventGameOver, RoomID: "ZZ9"}, "arena.eu.rooms.ZZ9.game_over"},
		{"foosball", MatchEvent{Kind: EventRoomClosed, RoomID: "Q1"}, "foosball.rooms.Q1.closed"},
	}
	for _, c := range cases {
		p := &NATSPublisher{prefix: c.prefix}
		if got := p.Subject(c.ev); got != c.want {
			t.Fatalf("subject for %s: expected %q, got %q", c.ev.Kind, c.want, got)
		}
	}
}
