// Package schedule holds the team scheduling data cached from the
// planning spreadsheet: player availability grids and week schedules.
// The cache table stores these as JSON text; this package owns the
// (de)serialization and the role grouping of players.
package schedule

import (
	"encoding/json"
	"fmt"
)

// Cell is one spreadsheet cell of a player's availability grid.
type Cell struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

// Player is one roster entry with its availability cells.
type Player struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Availability []Cell `json:"availability"`
}

// Players is a roster in both insertion order and grouped by role.
type Players struct {
	ByRole   map[string][]Player `json:"sorted_list"`
	Unsorted []Player            `json:"unsorted_list"`
}

// GroupPlayers builds a Players roster from a flat list.
func GroupPlayers(list []Player) Players {
	byRole := make(map[string][]Player)
	for _, p := range list {
		byRole[p.Role] = append(byRole[p.Role], p)
	}
	return Players{ByRole: byRole, Unsorted: list}
}

// DaySchedule is one day of a team's week: scheduled activities plus
// free-form notes, both indexed by time slot.
type DaySchedule struct {
	Name       string   `json:"name"`
	Date       string   `json:"date"`
	Activities []string `json:"activities"`
	Notes      []string `json:"notes"`
}

// WeekSchedule is a full week of day schedules.
type WeekSchedule struct {
	Days []DaySchedule `json:"days"`
}

// DecodePlayers parses the JSON text stored in the cache table's players
// column and regroups the roster by role.
func DecodePlayers(data string) (Players, error) {
	var stored struct {
		Unsorted []Player `json:"unsorted_list"`
	}
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return Players{}, fmt.Errorf("failed to decode players cache: %w", err)
	}
	return GroupPlayers(stored.Unsorted), nil
}

// DecodeWeek parses the JSON text stored in the cache table's
// week_schedule column.
func DecodeWeek(data string) (WeekSchedule, error) {
	var week WeekSchedule
	if err := json.Unmarshal([]byte(data), &week); err != nil {
		return WeekSchedule{}, fmt.Errorf("failed to decode week schedule cache: %w", err)
	}
	return week, nil
}
