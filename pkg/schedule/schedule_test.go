package schedule

import "testing"

func TestDecodePlayers(t *testing.T) {
	data := `{
		"unsorted_list": [
			{"name": "Zenith", "role": "Tank", "availability": [{"row": 2, "col": 3, "value": "Yes"}]},
			{"name": "Quark", "role": "DPS", "availability": []},
			{"name": "Pion", "role": "DPS", "availability": []}
		]
	}`

	players, err := DecodePlayers(data)
	if err != nil {
		t.Fatalf("failed to decode players: %v", err)
	}

	if len(players.Unsorted) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players.Unsorted))
	}
	if players.Unsorted[0].Name != "Zenith" {
		t.Errorf("expected first player Zenith, got %s", players.Unsorted[0].Name)
	}
	if len(players.ByRole["DPS"]) != 2 {
		t.Errorf("expected 2 DPS players, got %d", len(players.ByRole["DPS"]))
	}
	if len(players.ByRole["Tank"]) != 1 {
		t.Errorf("expected 1 Tank player, got %d", len(players.ByRole["Tank"]))
	}

	cell := players.Unsorted[0].Availability[0]
	if cell.Row != 2 || cell.Col != 3 || cell.Value != "Yes" {
		t.Errorf("unexpected availability cell: %+v", cell)
	}
}

func TestDecodePlayersInvalid(t *testing.T) {
	if _, err := DecodePlayers("not json"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDecodeWeek(t *testing.T) {
	data := `{
		"days": [
			{"name": "Monday", "date": "8/24", "activities": ["Scrim", "Free"], "notes": ["", "bring VODs"]},
			{"name": "Tuesday", "date": "8/25", "activities": [], "notes": []}
		]
	}`

	week, err := DecodeWeek(data)
	if err != nil {
		t.Fatalf("failed to decode week: %v", err)
	}

	if len(week.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(week.Days))
	}
	if week.Days[0].Name != "Monday" {
		t.Errorf("expected Monday, got %s", week.Days[0].Name)
	}
	if week.Days[0].Activities[0] != "Scrim" {
		t.Errorf("unexpected activities: %v", week.Days[0].Activities)
	}
}

func TestGroupPlayersEmpty(t *testing.T) {
	players := GroupPlayers(nil)
	if len(players.Unsorted) != 0 {
		t.Errorf("expected empty roster, got %d", len(players.Unsorted))
	}
	if len(players.ByRole) != 0 {
		t.Errorf("expected empty role map, got %v", players.ByRole)
	}
}
