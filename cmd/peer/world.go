package main

import (
	"foosball/client"
	"foosball/game"
	"foosball/physics"
)

// tableWorld 把 physics.Table 适配为 client.World
type tableWorld struct {
	*physics.Table
}

var _ client.World = tableWorld{}

func (w tableWorld) Rods(team game.Team) []client.RodBody {
	rods := w.TeamRods(team)
	out := make([]client.RodBody, len(rods))
	for i, r := range rods {
		out[i] = r
	}
	return out
}
