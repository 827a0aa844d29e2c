package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/hll-crcon/stats-hooks/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrNotTracked means the player has no row in the host database yet.
var ErrNotTracked = errors.New("player not tracked")

const defaultTopLimit = 3

const playerKeyQuery = "SELECT s.id FROM steam_id_64 AS s WHERE s.steam_id_64 = $1"

// StatsAggregator reads all-time player stats from the host database.
type StatsAggregator struct {
	pg       PgPool
	topLimit int
}

func NewStatsAggregator(pg PgPool) *StatsAggregator {
	return &StatsAggregator{pg: pg, topLimit: defaultTopLimit}
}

// ResolvePlayerKey translates an external player id into the database key.
func ResolvePlayerKey(ctx context.Context, q Querier, playerID string) (int64, error) {
	var key int64
	err := q.QueryRow(ctx, playerKeyQuery, playerID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotTracked
	}
	if err != nil {
		return 0, fmt.Errorf("resolve player key: %w", err)
	}
	return key, nil
}

// AllTimeStats runs the whole battery inside one read-only transaction.
// Returns ErrNotTracked for unknown players.
func (a *StatsAggregator) AllTimeStats(ctx context.Context, playerID string) (*models.AllTimeStats, error) {
	tx, err := a.pg.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	key, err := ResolvePlayerKey(ctx, tx, playerID)
	if err != nil {
		return nil, err
	}

	stats := &models.AllTimeStats{}
	scalars := map[string]any{
		"tot_games":        &stats.Games,
		"avg_combat":       &stats.AvgCombat,
		"avg_offense":      &stats.AvgOffense,
		"avg_defense":      &stats.AvgDefense,
		"avg_support":      &stats.AvgSupport,
		"tot_kills":        &stats.Kills,
		"tot_teamkills":    &stats.TeamKills,
		"tot_deaths":       &stats.Deaths,
		"tot_deaths_by_tk": &stats.DeathsByTK,
	}

	for _, q := range battery {
		if q.TopMap {
			continue
		}
		dest, ok := scalars[q.Name]
		if !ok {
			return nil, fmt.Errorf("%s: no destination", q.Name)
		}
		if err := tx.QueryRow(ctx, q.SQL, key).Scan(dest); err != nil {
			return nil, fmt.Errorf("%s: %w", q.Name, err)
		}
	}

	for _, q := range battery {
		if !q.TopMap {
			continue
		}
		rows, err := a.topMap(ctx, tx, q, key)
		if err != nil {
			return nil, err
		}
		switch q.Name {
		case "most_used_weapons":
			for _, r := range rows {
				stats.Weapons = append(stats.Weapons, models.WeaponUsage{Weapon: r.Name, Kills: r.Kills})
			}
		case "most_killed":
			stats.Victims = rows
		case "most_death_by":
			stats.Nemeses = rows
		}
	}

	return stats, nil
}

func (a *StatsAggregator) topMap(ctx context.Context, q Querier, nq NamedQuery, key int64) ([]models.Opponent, error) {
	rows, err := q.Query(ctx, nq.SQL, key, a.topLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", nq.Name, err)
	}
	defer rows.Close()

	var out []models.Opponent
	for rows.Next() {
		var o models.Opponent
		if err := rows.Scan(&o.Name, &o.Kills, &o.Games); err != nil {
			return nil, fmt.Errorf("%s scan: %w", nq.Name, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", nq.Name, err)
	}
	return out, nil
}
