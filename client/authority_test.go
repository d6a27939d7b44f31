package client

import (
	"errors"
	"testing"

	"foosball/game"
)

func TestGoalAuthorityHostReportsOpponent(t *testing.T) {
	var reported []game.Team
	a := NewGoalAuthority(game.RoleHost, func(team game.Team) error {
		reported = append(reported, team)
		return nil
	})

	if !a.OnSensor(game.TeamHome) {
		t.Fatalf("host should report")
	}
	if a.OnSensor(game.TeamHome) || a.OnSensor(game.TeamAway) {
		t.Fatalf("authority must stay disarmed until the ball is reset")
	}
	a.Rearm()
	if !a.OnSensor(game.TeamAway) {
		t.Fatalf("rearmed authority should report")
	}
	if len(reported) != 2 || reported[0] != game.TeamAway || reported[1] != game.TeamHome {
		t.Fatalf("expected [away home], got %v", reported)
	}
}

func TestGoalAuthorityGuestNeverReports(t *testing.T) {
	a := NewGoalAuthority(game.RoleGuest, func(game.Team) error {
		t.Fatalf("guest must not report goals")
		return nil
	})
	for i := 0; i < 3; i++ {
		if a.OnSensor(game.TeamHome) {
			t.Fatalf("guest reported a goal")
		}
		a.Rearm()
	}
}

func TestGoalAuthorityStaysArmedOnSendError(t *testing.T) {
	a := NewGoalAuthority(game.RoleHost, func(game.Team) error { return errors.New("closed") })
	if a.OnSensor(game.TeamAway) {
		t.Fatalf("failed report should not count")
	}
	if !a.Armed() {
		t.Fatalf("authority should remain armed after a failed report")
	}
}
