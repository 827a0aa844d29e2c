package logic

import (
	"fmt"
)

const statsTable = "public.player_stats"

// allowedAggregateColumns maps safe names to per-game integer columns
var allowedAggregateColumns = map[string]string{
	"combat":       "combat",
	"offense":      "offense",
	"defense":      "defense",
	"support":      "support",
	"kills":        "kills",
	"deaths":       "deaths",
	"teamkills":    "teamkills",
	"deaths_by_tk": "deaths_by_tk",
}

// allowedMapColumns maps safe names to per-game JSON map columns
var allowedMapColumns = map[string]string{
	"weapons":     "weapons",
	"most_killed": "most_killed",
	"death_by":    "death_by",
}

// BuildAggregateQuery returns a single-value query over every game of the
// player bound to $1. fn is COUNT, AVG or SUM; column is ignored for COUNT.
// Empty aggregates yield 0 instead of NULL.
func BuildAggregateQuery(fn, column string) (string, error) {
	if fn == "COUNT" {
		return fmt.Sprintf("SELECT COUNT(*)::bigint FROM %s WHERE playersteamid_id = $1", statsTable), nil
	}

	col, ok := allowedAggregateColumns[column]
	if !ok {
		return "", fmt.Errorf("invalid column: %s", column)
	}

	switch fn {
	case "AVG":
		return fmt.Sprintf("SELECT COALESCE(AVG(%s), 0)::float8 FROM %s WHERE playersteamid_id = $1", col, statsTable), nil
	case "SUM":
		return fmt.Sprintf("SELECT COALESCE(SUM(%s), 0)::bigint FROM %s WHERE playersteamid_id = $1", col, statsTable), nil
	default:
		return "", fmt.Errorf("invalid aggregate: %s", fn)
	}
}

// BuildTopMapQuery sums a JSON map column over every game of the player bound
// to $1 and returns the top $2 keys as (key, total, games).
func BuildTopMapQuery(column string) (string, error) {
	col, ok := allowedMapColumns[column]
	if !ok {
		return "", fmt.Errorf("invalid map column: %s", column)
	}

	return fmt.Sprintf(
		"SELECT entry.key, SUM(entry.value::int)::bigint AS total, COUNT(*)::bigint AS games"+
			" FROM %s, jsonb_each_text(%s::jsonb) AS entry"+
			" WHERE playersteamid_id = $1"+
			" GROUP BY entry.key"+
			" ORDER BY total DESC"+
			" LIMIT $2",
		statsTable, col,
	), nil
}

// NamedQuery is one query of the all-time stats battery.
type NamedQuery struct {
	Name string
	SQL  string
	// TopMap queries return rows and take the row limit as $2.
	TopMap bool
}

var battery = mustBattery()

func mustBattery() []NamedQuery {
	specs := []struct {
		name, fn, column string
	}{
		{"tot_games", "COUNT", ""},
		{"avg_combat", "AVG", "combat"},
		{"avg_offense", "AVG", "offense"},
		{"avg_defense", "AVG", "defense"},
		{"avg_support", "AVG", "support"},
		{"tot_kills", "SUM", "kills"},
		{"tot_teamkills", "SUM", "teamkills"},
		{"tot_deaths", "SUM", "deaths"},
		{"tot_deaths_by_tk", "SUM", "deaths_by_tk"},
	}

	out := make([]NamedQuery, 0, len(specs)+3)
	for _, s := range specs {
		q, err := BuildAggregateQuery(s.fn, s.column)
		if err != nil {
			panic(err)
		}
		out = append(out, NamedQuery{Name: s.name, SQL: q})
	}

	maps := []struct{ name, column string }{
		{"most_used_weapons", "weapons"},
		{"most_killed", "most_killed"},
		{"most_death_by", "death_by"},
	}
	for _, m := range maps {
		q, err := BuildTopMapQuery(m.column)
		if err != nil {
			panic(err)
		}
		out = append(out, NamedQuery{Name: m.name, SQL: q, TopMap: true})
	}
	return out
}

// Battery returns the all-time stats queries in execution order.
func Battery() []NamedQuery {
	out := make([]NamedQuery, len(battery))
	copy(out, battery)
	return out
}
