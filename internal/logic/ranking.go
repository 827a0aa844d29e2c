package logic

import (
	"fmt"
	"math"
	"sort"

	"github.com/hll-crcon/stats-hooks/internal/message"
	"github.com/hll-crcon/stats-hooks/internal/models"
)

// RoleKind partitions the live snapshot for ranking.
type RoleKind string

const (
	RoleCommander RoleKind = "commander"
	RoleInfantry  RoleKind = "infantry"
	RoleArmor     RoleKind = "armor"
)

// EntityKind tells whether a category ranks players or whole squads.
type EntityKind string

const (
	EntityPlayer EntityKind = "player"
	EntitySquad  EntityKind = "squad"
)

// Metric names a scoring formula.
type Metric string

const (
	MetricRatio    Metric = "ratio"
	MetricOffDef   Metric = "offdef"
	MetricTeamplay Metric = "teamplay"
	MetricKillRate Metric = "killrate"
)

// Entity is a rankable player or squad. Squad counters are the sum of their
// members' counters and PlayerID is empty.
type Entity struct {
	Name     string
	PlayerID string
	Team     models.Team
	Squad    string
	Role     RoleKind
	Combat   int64
	Offense  int64
	Defense  int64
	Support  int64
	Kills    int64
	Deaths   int64
}

func (e *Entity) add(p models.LivePlayer) {
	e.Combat += p.Combat
	e.Offense += p.Offense
	e.Defense += p.Defense
	e.Support += p.Support
	e.Kills += p.Kills
	e.Deaths += p.Deaths
}

// Scorer computes the ranking score of an entity.
type Scorer func(e Entity) float64

// Weights are the ratios applied by the weighted scorers.
type Weights struct {
	OffenseDefenseRatio float64
	CombatSupportRatio  float64
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{OffenseDefenseRatio: 0.5, CombatSupportRatio: 0.5}
}

// Ratio is kills per death, deaths floored at 1.
func Ratio(e Entity) float64 {
	deaths := e.Deaths
	if deaths < 1 {
		deaths = 1
	}
	return message.Round(float64(e.Kills)/float64(deaths), 2)
}

// KillRate is kills per 20 offense+defense points.
func KillRate(e Entity) float64 {
	points := e.Offense + e.Defense
	if e.Kills == 0 || points == 0 {
		return 0
	}
	return message.Round(float64(e.Kills)/(float64(points)/20), 2)
}

// RealOffDef rewards entities strong on both offense and defense.
func (w Weights) RealOffDef(e Entity) float64 {
	return math.Floor(float64(e.Offense) * float64(e.Defense) * w.OffenseDefenseRatio)
}

// Teamplay weighs support points against combat points.
func (w Weights) Teamplay(e Entity) float64 {
	return math.Floor(float64(e.Combat) + float64(e.Support)*w.CombatSupportRatio)
}

// Scorer returns the scoring function of a metric.
func (w Weights) Scorer(m Metric) (Scorer, error) {
	switch m {
	case MetricRatio:
		return Ratio, nil
	case MetricKillRate:
		return KillRate, nil
	case MetricOffDef:
		return w.RealOffDef, nil
	case MetricTeamplay:
		return w.Teamplay, nil
	default:
		return nil, fmt.Errorf("unknown metric: %q", m)
	}
}

// Ranked is an entity with its score.
type Ranked struct {
	Entity
	Score float64
}

// TopN returns at most limit entities by descending score. Entities scoring
// exactly zero are skipped and ties keep their input order.
func TopN(entities []Entity, score Scorer, limit int) []Ranked {
	if limit <= 0 {
		return nil
	}

	ranked := make([]Ranked, 0, len(entities))
	for _, e := range entities {
		s := score(e)
		if s == 0 {
			continue
		}
		ranked = append(ranked, Ranked{Entity: e, Score: s})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Category is one leaderboard: who is ranked and how.
type Category struct {
	Role   RoleKind
	Kind   EntityKind
	Metric Metric
	Limit  int
}

// VIPEligible reports whether winners of this category may receive VIP.
func (c Category) VIPEligible() bool {
	return c.Kind == EntityPlayer && c.Metric != MetricRatio && c.Metric != MetricKillRate
}

func (c Category) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Role, c.Kind, c.Metric)
}

// DefaultCategories is the stock leaderboard layout.
func DefaultCategories(playerLimit, squadLimit int) []Category {
	return []Category{
		{Role: RoleCommander, Kind: EntityPlayer, Metric: MetricTeamplay, Limit: 2},
		{Role: RoleInfantry, Kind: EntityPlayer, Metric: MetricKillRate, Limit: playerLimit},
		{Role: RoleInfantry, Kind: EntityPlayer, Metric: MetricRatio, Limit: playerLimit},
		{Role: RoleInfantry, Kind: EntityPlayer, Metric: MetricOffDef, Limit: playerLimit},
		{Role: RoleInfantry, Kind: EntityPlayer, Metric: MetricTeamplay, Limit: playerLimit},
		{Role: RoleInfantry, Kind: EntitySquad, Metric: MetricOffDef, Limit: squadLimit},
		{Role: RoleInfantry, Kind: EntitySquad, Metric: MetricTeamplay, Limit: squadLimit},
		{Role: RoleArmor, Kind: EntityPlayer, Metric: MetricRatio, Limit: playerLimit},
		{Role: RoleArmor, Kind: EntitySquad, Metric: MetricTeamplay, Limit: squadLimit},
	}
}

type squadKey struct {
	team  models.Team
	squad string
}

// Snapshot is the rankable view of one live team view. It is built once per
// invocation and discarded.
type Snapshot struct {
	players     map[RoleKind][]Entity
	squads      map[RoleKind][]Entity
	members     map[squadKey][]string
	playerCount int
}

func roleOfSquad(squadType string) (RoleKind, bool) {
	switch squadType {
	case models.SquadInfantry, models.SquadRecon:
		return RoleInfantry, true
	case models.SquadArmor:
		return RoleArmor, true
	case models.SquadCommander:
		return RoleCommander, true
	default:
		return "", false
	}
}

// SnapshotFromTeamView partitions the team view by role. Allies come before
// axis and squads are visited in name order so rankings are deterministic.
func SnapshotFromTeamView(tv *models.TeamView) *Snapshot {
	s := &Snapshot{
		players: make(map[RoleKind][]Entity),
		squads:  make(map[RoleKind][]Entity),
		members: make(map[squadKey][]string),
	}
	if tv == nil {
		return s
	}

	for _, team := range []models.Team{models.TeamAllies, models.TeamAxis} {
		side := tv.Side(team)

		if side.Commander != nil && side.Commander.Name != "" {
			s.players[RoleCommander] = append(s.players[RoleCommander], playerEntity(*side.Commander, team, "", RoleCommander))
			s.playerCount++
		}

		names := make([]string, 0, len(side.Squads))
		for name := range side.Squads {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			squad := side.Squads[name]
			role, ok := roleOfSquad(squad.Type)
			if !ok {
				s.playerCount += len(squad.Players)
				continue
			}

			total := Entity{Name: name, Team: team, Squad: name, Role: role}
			key := squadKey{team: team, squad: name}
			for _, p := range squad.Players {
				s.players[role] = append(s.players[role], playerEntity(p, team, name, role))
				s.members[key] = append(s.members[key], p.Name)
				total.add(p)
				s.playerCount++
			}
			if len(squad.Players) > 0 && role != RoleCommander {
				s.squads[role] = append(s.squads[role], total)
			}
		}
	}
	return s
}

func playerEntity(p models.LivePlayer, team models.Team, squad string, role RoleKind) Entity {
	e := Entity{Name: p.Name, PlayerID: p.PlayerID, Team: team, Squad: squad, Role: role}
	e.add(p)
	return e
}

// Entities returns the players or squads of a role.
func (s *Snapshot) Entities(role RoleKind, kind EntityKind) []Entity {
	if kind == EntitySquad {
		return s.squads[role]
	}
	return s.players[role]
}

// SquadMembers lists the player names of a squad.
func (s *Snapshot) SquadMembers(team models.Team, squad string) []string {
	return s.members[squadKey{team: team, squad: squad}]
}

// PlayerCount is the number of players seen in the team view.
func (s *Snapshot) PlayerCount() int {
	return s.playerCount
}

// BuildTops ranks every category against the snapshot. Categories with no
// scoring entity are kept with an empty Top so layouts stay stable.
func BuildTops(snap *Snapshot, categories []Category, w Weights) (models.TopsBoard, error) {
	board := models.TopsBoard{
		PlayerCount: snap.PlayerCount(),
		Cards:       make([]models.TopsCard, 0, len(categories)),
	}

	for _, c := range categories {
		scorer, err := w.Scorer(c.Metric)
		if err != nil {
			return models.TopsBoard{}, fmt.Errorf("category %s: %w", c, err)
		}

		card := models.TopsCard{
			Role:        string(c.Role),
			EntityKind:  string(c.Kind),
			Metric:      string(c.Metric),
			VIPEligible: c.VIPEligible(),
		}
		for i, r := range TopN(snap.Entities(c.Role, c.Kind), scorer, c.Limit) {
			entry := models.TopsEntry{
				Rank:         i + 1,
				PlayerID:     r.PlayerID,
				Name:         r.Name,
				Team:         r.Team,
				Value:        r.Score,
				DisplayValue: displayScore(c.Metric, r.Score),
			}
			if c.Kind == EntitySquad {
				entry.Members = snap.SquadMembers(r.Team, r.Squad)
			}
			card.Top = append(card.Top, entry)
		}
		board.Cards = append(board.Cards, card)
	}
	return board, nil
}

func displayScore(m Metric, v float64) string {
	if m == MetricRatio || m == MetricKillRate {
		return message.FormatFloat(v)
	}
	return message.FormatCount(v)
}
