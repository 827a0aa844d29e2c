package models

// TopsCard is one ranked category of the live leaderboard.
type TopsCard struct {
	Role        string      `json:"role"`
	EntityKind  string      `json:"entity_kind"`
	Metric      string      `json:"metric"`
	VIPEligible bool        `json:"vip_eligible"`
	Top         []TopsEntry `json:"top"`
}

// TopsEntry is a ranked player or squad.
type TopsEntry struct {
	Rank         int      `json:"rank"`
	PlayerID     string   `json:"player_id,omitempty"`
	Name         string   `json:"name"`
	Team         Team     `json:"team"`
	Value        float64  `json:"value"`
	DisplayValue string   `json:"display_value,omitempty"`
	Members      []string `json:"members,omitempty"`
	VIP          VIPMark  `json:"vip,omitempty"`
}

// VIPMark records what happened to a VIP-eligible entry.
type VIPMark string

const (
	VIPNone    VIPMark = ""
	VIPGranted VIPMark = "granted"
	VIPAlready VIPMark = "already"
)

// TopsBoard is the full leaderboard computed from one live snapshot.
type TopsBoard struct {
	PlayerCount int        `json:"player_count"`
	Cards       []TopsCard `json:"cards"`
}
