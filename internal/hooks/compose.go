package hooks

import (
	"fmt"
	"strings"
	"time"

	"github.com/hll-crcon/stats-hooks/internal/locale"
	"github.com/hll-crcon/stats-hooks/internal/logic"
	"github.com/hll-crcon/stats-hooks/internal/message"
	"github.com/hll-crcon/stats-hooks/internal/models"
)

// ComposeAllTimeStats renders a player's profile and all-time stats.
func ComposeAllTimeStats(name string, p *models.PlayerProfile, s *models.AllTimeStats, now time.Time, tbl locale.Table, style logic.DurationStyle) (string, error) {
	var b message.Builder
	b.Lines(name)

	var firstSeen []string
	if !p.Created.IsZero() {
		elapsed := now.Sub(p.Created.Time).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		d, err := logic.ReadableDuration(elapsed, tbl, style)
		if err != nil {
			return "", err
		}
		firstSeen = append(firstSeen, tbl.T("firsttimehere"), d)
	}
	firstSeen = append(firstSeen,
		fmt.Sprintf("%s : %d", tbl.T("gamesessions"), p.SessionsCount),
		fmt.Sprintf("%s : %d", tbl.T("playedgames"), s.Games),
	)
	b.Lines(firstSeen...)

	total, err := logic.ReadableDuration(p.TotalPlaytimeSeconds, tbl, style)
	if err != nil {
		return "", err
	}
	avg, err := logic.ReadableDuration(p.AverageSessionSeconds(), tbl, style)
	if err != nil {
		return "", err
	}
	b.Lines(
		tbl.T("cumulatedplaytime"),
		total,
		fmt.Sprintf("(%s : %s)", tbl.T("averagesession"), avg),
	)

	b.Section(tbl.T("punishments"), penalties(p.PenaltyCount, tbl))

	b.Section(tbl.T("averages"),
		fmt.Sprintf("%s : %s ; %s : %s", tbl.T("combat"), avgValue(s.AvgCombat), tbl.T("support"), avgValue(s.AvgSupport)),
		fmt.Sprintf("%s : %s ; %s : %s", tbl.T("offense"), avgValue(s.AvgOffense), tbl.T("defense"), avgValue(s.AvgDefense)),
	)

	kills, deaths := tbl.T("kills"), tbl.T("deaths")
	b.Section(tbl.T("totals"),
		fmt.Sprintf("%s : %d (%d TKs)", kills, s.Kills, s.TeamKills),
		fmt.Sprintf("%s : %d (%d TKs)", deaths, s.Deaths, s.DeathsByTK),
		fmt.Sprintf("%s %s/%s : %s", tbl.T("ratio"), kills, deaths, message.FormatFloat(message.Round(s.KillDeathRatio(), 2))),
	)

	weapons := make([]string, 0, len(s.Weapons))
	for _, w := range s.Weapons {
		weapons = append(weapons, fmt.Sprintf("%s (%d %s)", w.Weapon, w.Kills, kills))
	}
	b.Section(tbl.T("favoriteweapons"), weapons...)
	b.Section(tbl.T("victims"), opponents(s.Victims, tbl)...)
	b.Section(tbl.T("nemesis"), opponents(s.Nemeses, tbl)...)

	return b.String(), nil
}

func avgValue(v float64) string {
	return message.FormatFloat(message.Round(v, 2))
}

func penalties(pc models.PenaltyCount, tbl locale.Table) string {
	if pc.None() {
		return tbl.T("nopunish")
	}
	var parts []string
	if pc.Punish > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", pc.Punish, tbl.T("punishes")))
	}
	if pc.Kick > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", pc.Kick, tbl.T("kicks")))
	}
	if pc.TempBan > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", pc.TempBan, tbl.T("tempbans")))
	}
	return strings.Join(parts, ", ")
}

func opponents(list []models.Opponent, tbl locale.Table) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, fmt.Sprintf("%s : %d (%d %s)", o.Name, o.Kills, o.Games, tbl.T("games")))
	}
	return out
}

var roleKeys = map[string]string{
	string(logic.RoleCommander): "commanders",
	string(logic.RoleInfantry):  "infantry",
	string(logic.RoleArmor):     "armor",
}

var kindKeys = map[string]string{
	string(logic.EntityPlayer): "players",
	string(logic.EntitySquad):  "squads",
}

// ComposeTops renders the leaderboard. Cards without entries are omitted.
func ComposeTops(board models.TopsBoard, tbl locale.Table) string {
	var b message.Builder
	b.Lines(tbl.T("tops"))

	ranked := 0
	for _, card := range board.Cards {
		if len(card.Top) == 0 {
			continue
		}
		ranked++

		title := tbl.T(roleKeys[card.Role])
		if card.Role != string(logic.RoleCommander) {
			title += " " + tbl.T(kindKeys[card.EntityKind])
		}
		title += " : " + tbl.T(card.Metric)

		lines := make([]string, 0, len(card.Top)*2)
		for _, e := range card.Top {
			line := fmt.Sprintf("#%d %s [%s] : %s", e.Rank, e.Name, tbl.T(string(e.Team)), e.DisplayValue)
			switch e.VIP {
			case models.VIPGranted:
				line += " (" + tbl.T("vip_granted") + ")"
			case models.VIPAlready:
				line += " (" + tbl.T("already_vip") + ")"
			}
			lines = append(lines, line)
			if len(e.Members) > 0 {
				lines = append(lines, "   "+strings.Join(e.Members, ", "))
			}
		}
		b.Section(title, lines...)
	}

	if ranked == 0 {
		b.Lines(tbl.T("nostats"))
	}
	return b.String()
}
