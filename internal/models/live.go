package models

import (
	"encoding/json"
)

// Team represents a side in the live match
type Team string

const (
	TeamAllies Team = "allies"
	TeamAxis   Team = "axis"
)

// Squad types reported by the host
const (
	SquadInfantry  = "infantry"
	SquadRecon     = "recon"
	SquadArmor     = "armor"
	SquadCommander = "commander"
)

// LivePlayer is one connected player in the host's team view. Counters reset
// every match.
type LivePlayer struct {
	Name     string `json:"name"`
	PlayerID string `json:"player_id"`
	Team     string `json:"team"`
	Unit     string `json:"unit_name"`
	Role     string `json:"role"`
	Level    int    `json:"level"`
	Combat   int64  `json:"combat"`
	Offense  int64  `json:"offense"`
	Defense  int64  `json:"defense"`
	Support  int64  `json:"support"`
	Kills    int64  `json:"kills"`
	Deaths   int64  `json:"deaths"`
}

func (p *LivePlayer) UnmarshalJSON(data []byte) error {
	type Alias LivePlayer
	return flexUnmarshal(data, (*Alias)(p))
}

// LiveSquad is a squad of the team view.
type LiveSquad struct {
	Type    string       `json:"type"`
	Players []LivePlayer `json:"players"`
}

// TeamSide is one team of the team view.
type TeamSide struct {
	Commander *LivePlayer          `json:"commander"`
	Squads    map[string]LiveSquad `json:"squads"`
	Count     int                  `json:"count"`
}

// TeamView is the host's live snapshot of both teams.
type TeamView struct {
	Allies TeamSide `json:"allies"`
	Axis   TeamSide `json:"axis"`
}

// Side returns the snapshot of the given team.
func (tv *TeamView) Side(team Team) *TeamSide {
	if team == TeamAxis {
		return &tv.Axis
	}
	return &tv.Allies
}

// ServerStatus is the subset of the host status used by the hooks.
type ServerStatus struct {
	Name           string          `json:"name"`
	Map            json.RawMessage `json:"map,omitempty"`
	CurrentPlayers int             `json:"current_players"`
	MaxPlayers     int             `json:"max_players"`
	ServerNumber   int             `json:"server_number"`
}

func (s *ServerStatus) UnmarshalJSON(data []byte) error {
	type Alias ServerStatus
	return flexUnmarshal(data, (*Alias)(s))
}

// VipEntry is one row of the host VIP list. A zero Expiration means the VIP
// never expires.
type VipEntry struct {
	PlayerID   string   `json:"player_id"`
	Name       string   `json:"name"`
	Expiration HostTime `json:"vip_expiration"`
}

// UnmarshalJSON also accepts the "expiration" key of older host versions.
func (v *VipEntry) UnmarshalJSON(data []byte) error {
	type Alias VipEntry
	aux := struct {
		*Alias
		Legacy *HostTime `json:"expiration"`
	}{Alias: (*Alias)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if v.Expiration.IsZero() && aux.Legacy != nil {
		v.Expiration = *aux.Legacy
	}
	return nil
}

// PlayerRef identifies a connected player.
type PlayerRef struct {
	Name     string
	PlayerID string
}
