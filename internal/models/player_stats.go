package models

// PenaltyCount holds the per-kind penalty counters of a player profile.
type PenaltyCount struct {
	Kick     int `json:"KICK"`
	Punish   int `json:"PUNISH"`
	TempBan  int `json:"TEMPBAN"`
	PermaBan int `json:"PERMABAN"`
}

// None reports whether the player never received a kick, punish or tempban.
func (p PenaltyCount) None() bool {
	return p.Kick == 0 && p.Punish == 0 && p.TempBan == 0
}

// PlayerProfile is the host's historical summary of a player.
type PlayerProfile struct {
	PlayerID             string       `json:"player_id"`
	Created              HostTime     `json:"created"`
	SessionsCount        int          `json:"sessions_count"`
	TotalPlaytimeSeconds float64      `json:"total_playtime_seconds"`
	PenaltyCount         PenaltyCount `json:"penalty_count"`
}

func (p *PlayerProfile) UnmarshalJSON(data []byte) error {
	type Alias PlayerProfile
	return flexUnmarshal(data, (*Alias)(p))
}

// AverageSessionSeconds guards against profiles with no recorded session.
func (p *PlayerProfile) AverageSessionSeconds() float64 {
	sessions := p.SessionsCount
	if sessions < 1 {
		sessions = 1
	}
	return p.TotalPlaytimeSeconds / float64(sessions)
}

// WeaponUsage is a weapon and the kills made with it.
type WeaponUsage struct {
	Weapon string `json:"weapon"`
	Kills  int64  `json:"kills"`
}

// Opponent is a player killed by (victim) or killing (nemesis) the subject.
type Opponent struct {
	Name  string `json:"name"`
	Kills int64  `json:"kills"`
	Games int64  `json:"games"`
}

// AllTimeStats aggregates every recorded game of one player.
type AllTimeStats struct {
	Games      int64         `json:"games"`
	AvgCombat  float64       `json:"avg_combat"`
	AvgOffense float64       `json:"avg_offense"`
	AvgDefense float64       `json:"avg_defense"`
	AvgSupport float64       `json:"avg_support"`
	Kills      int64         `json:"kills"`
	TeamKills  int64         `json:"teamkills"`
	Deaths     int64         `json:"deaths"`
	DeathsByTK int64         `json:"deaths_by_tk"`
	Weapons    []WeaponUsage `json:"weapons"`
	Victims    []Opponent    `json:"victims"`
	Nemeses    []Opponent    `json:"nemeses"`
}

// KillDeathRatio excludes team kills on both sides. A zero denominator is
// replaced by 1.
func (s *AllTimeStats) KillDeathRatio() float64 {
	kills := s.Kills - s.TeamKills
	deaths := s.Deaths - s.DeathsByTK
	if deaths < 1 {
		deaths = 1
	}
	return float64(kills) / float64(deaths)
}
