// Package botdata exposes the bot's domain accessors: per-server config,
// team config, player availability and the sheet cache. Every accessor is
// a thin composition of the generic store primitives with a table name,
// a match field and a tenant scope.
package botdata

import (
	"context"
	"fmt"
	"time"

	"github.com/thonkybot/thonkybot/pkg/schedule"
	"github.com/thonkybot/thonkybot/pkg/store"
)

// templateID is the reserved server id of the template row whose non-empty
// fields seed newly created server and team configs.
const templateID int64 = 0

// lastSavedFormat is the timestamp format of the cache table's last_saved
// column: ISO 8601 truncated to whole seconds.
const lastSavedFormat = "2006-01-02T15:04:05"

// DB wraps a RowStore with the bot's domain accessors.
type DB struct {
	store *store.RowStore
}

// New creates a DB over an initialized RowStore.
func New(s *store.RowStore) *DB {
	return &DB{store: s}
}

// ServerConfig returns the config row of one server, or nil when the server
// has no config yet.
func (d *DB) ServerConfig(ctx context.Context, serverID int64) (store.Row, error) {
	return d.store.Search(ctx, "server_config", store.Filter{
		Field: "server_id",
		Value: serverID,
	})
}

// UpdateServerConfig sets one config field of a server.
func (d *DB) UpdateServerConfig(ctx context.Context, serverID int64, key string, value any) error {
	return d.store.Update(ctx, "server_config", store.Filter{
		Field: "server_id",
		Value: serverID,
	}, key, value)
}

// AddServerConfig creates a config row for a new server from the template.
func (d *DB) AddServerConfig(ctx context.Context, serverID int64) error {
	tmpl, err := d.templateConfig(ctx)
	if err != nil {
		return err
	}
	return d.store.Add(ctx, "server_config", serverID, tmpl)
}

// templateConfig returns the template row with its empty fields pruned, so
// new rows only inherit the defaults that are actually set.
func (d *DB) templateConfig(ctx context.Context) (map[string]any, error) {
	row, err := d.ServerConfig(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("template config row missing")
	}

	tmpl := make(map[string]any, len(row))
	for key, value := range row {
		if isEmpty(value) {
			continue
		}
		tmpl[key] = value
	}
	return tmpl, nil
}

// TeamConfig returns one team's config, matched case-insensitively by name
// within the given server.
func (d *DB) TeamConfig(ctx context.Context, guildID int64, teamName string) (store.Row, error) {
	return d.store.Search(ctx, "teams", store.Filter{
		Field:           "team_name",
		Value:           teamName,
		CaseInsensitive: true,
		Extra:           store.ServerScope(guildID),
	})
}

// Teams returns every team registered on a server.
func (d *DB) Teams(ctx context.Context, guildID int64) ([]store.Row, error) {
	return d.store.SearchAll(ctx, "teams", store.Filter{
		Field: "server_id",
		Value: guildID,
	})
}

// UpdateTeamConfig sets one config field of a team.
func (d *DB) UpdateTeamConfig(ctx context.Context, guildID int64, teamName, key string, value any) error {
	return d.store.Update(ctx, "teams", store.Filter{
		Field: "team_name",
		Value: teamName,
		Extra: store.ServerScope(guildID),
	}, key, value)
}

// AddTeamConfig creates a team from the template, with its name and a
// single starting channel.
func (d *DB) AddTeamConfig(ctx context.Context, guildID int64, teamName string, channel int64) error {
	tmpl, err := d.templateConfig(ctx)
	if err != nil {
		return err
	}
	tmpl["team_name"] = teamName
	tmpl["channels"] = []int64{channel}
	return d.store.Add(ctx, "teams", guildID, tmpl)
}

// PlayerData returns one player's availability row, matched
// case-insensitively by name. A non-empty date narrows the match to one day.
func (d *DB) PlayerData(ctx context.Context, serverID int64, name, date string) (store.Row, error) {
	scope := store.ServerScope(serverID)
	if date != "" {
		scope = scope.And(store.DateScope(date))
	}
	return d.store.Search(ctx, "player_data", store.Filter{
		Field:           "name",
		Value:           name,
		CaseInsensitive: true,
		Extra:           scope,
	})
}

// AddPlayerData records a player's availability for one day.
func (d *DB) AddPlayerData(ctx context.Context, serverID int64, name, date string, availability any) error {
	return d.store.Add(ctx, "player_data", serverID, map[string]any{
		"name":         name,
		"date":         date,
		"availability": availability,
	})
}

// SheetCache is the deserialized cache row of one team: the roster grouped
// by role and the week schedule, with the save timestamp of the row.
type SheetCache struct {
	LastSaved string
	Players   schedule.Players
	Week      schedule.WeekSchedule
}

// SheetCache returns the cached sheet data of one team, or nil when the
// team has nothing cached yet.
func (d *DB) SheetCache(ctx context.Context, serverID int64, teamName string) (*SheetCache, error) {
	row, err := d.store.Search(ctx, "cache", store.Filter{
		Field: "team_name",
		Value: teamName,
		Extra: store.ServerScope(serverID),
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	cached := &SheetCache{}
	if saved, ok := row["last_saved"].(string); ok {
		cached.LastSaved = saved
	}
	if data, ok := row["players"].(string); ok && data != "" {
		players, err := schedule.DecodePlayers(data)
		if err != nil {
			return nil, err
		}
		cached.Players = players
	}
	if data, ok := row["week_schedule"].(string); ok && data != "" {
		week, err := schedule.DecodeWeek(data)
		if err != nil {
			return nil, err
		}
		cached.Week = week
	}
	return cached, nil
}

// UpdateSheetCache stores a fresh payload under one cache column for a team,
// stamping last_saved with the current time truncated to whole seconds.
// The row is created on first write.
func (d *DB) UpdateSheetCache(ctx context.Context, serverID int64, teamName, key string, value any) error {
	if key != "players" && key != "week_schedule" {
		return fmt.Errorf("unknown cache key: %q", key)
	}

	lastSaved := time.Now().UTC().Truncate(time.Second).Format(lastSavedFormat)
	scope := store.ServerScope(serverID)

	existing, err := d.store.Search(ctx, "cache", store.Filter{
		Field: "team_name",
		Value: teamName,
		Extra: scope,
	})
	if err != nil {
		return err
	}

	if existing == nil {
		return d.store.Add(ctx, "cache", serverID, map[string]any{
			"team_name":  teamName,
			key:          value,
			"last_saved": lastSaved,
		})
	}

	return d.store.UpdateMany(ctx, "cache", store.Filter{
		Field: "team_name",
		Value: teamName,
		Extra: scope,
	}, map[string]any{
		key:          value,
		"last_saved": lastSaved,
	})
}

// isEmpty reports whether a template field carries no default: nil, an
// empty string, or a numeric zero.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case int64:
		return t == 0
	case int:
		return t == 0
	case float64:
		return t == 0
	default:
		return false
	}
}
