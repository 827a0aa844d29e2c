package logic

import (
	"time"

	"github.com/hll-crcon/stats-hooks/internal/models"
)

// VIPPolicy controls VIP rewards for leaderboard winners at match end.
type VIPPolicy struct {
	Enabled   bool
	Winners   int // top entries rewarded per eligible category
	Hours     int
	SeedLimit int // minimum live players for any grant
	Note      string
}

// VIPAction is the outcome of a VIP decision.
type VIPAction int

const (
	VIPGrant VIPAction = iota
	VIPAlreadyHeld
)

// VIPDecision is what to do for one winner.
type VIPDecision struct {
	PlayerID   string
	Name       string
	Action     VIPAction
	Expiration time.Time
}

// ExpirationISO is the expiration as sent to the host.
func (d VIPDecision) ExpirationISO() string {
	return d.Expiration.UTC().Format(time.RFC3339)
}

// Decide picks the winners of every VIP-eligible category and compares them
// with the live VIP list. A player whose VIP already lasts at least as long as
// the new grant (or never expires) gets VIPAlreadyHeld. A player winning
// several categories is decided once.
func (p VIPPolicy) Decide(board *models.TopsBoard, current []models.VipEntry, now time.Time) []VIPDecision {
	if !p.Enabled || p.Winners <= 0 || p.Hours <= 0 || board == nil {
		return nil
	}
	if board.PlayerCount < p.SeedLimit {
		return nil
	}

	existing := make(map[string]models.VipEntry, len(current))
	for _, v := range current {
		existing[v.PlayerID] = v
	}

	expiration := now.Add(time.Duration(p.Hours) * time.Hour)
	seen := make(map[string]struct{})
	var decisions []VIPDecision

	for _, card := range board.Cards {
		if !card.VIPEligible {
			continue
		}
		for i, entry := range card.Top {
			if i >= p.Winners {
				break
			}
			if entry.PlayerID == "" {
				continue
			}
			if _, ok := seen[entry.PlayerID]; ok {
				continue
			}
			seen[entry.PlayerID] = struct{}{}

			d := VIPDecision{PlayerID: entry.PlayerID, Name: entry.Name, Action: VIPGrant, Expiration: expiration}
			if v, ok := existing[entry.PlayerID]; ok {
				if v.Expiration.IsZero() || !v.Expiration.Before(expiration) {
					d.Action = VIPAlreadyHeld
					d.Expiration = v.Expiration.Time
				}
			}
			decisions = append(decisions, d)
		}
	}
	return decisions
}

// MarkVIP flags the winner entries of a player in every VIP-eligible card.
func MarkVIP(board *models.TopsBoard, playerID string, mark models.VIPMark, winners int) {
	for c := range board.Cards {
		card := &board.Cards[c]
		if !card.VIPEligible {
			continue
		}
		for i := range card.Top {
			if i >= winners {
				break
			}
			if card.Top[i].PlayerID == playerID {
				card.Top[i].VIP = mark
			}
		}
	}
}
