package projection

import (
	"sort"

	"matchday-backend/internal/models"
)

const historyLimit = 10

type HistoryEntry struct {
	Match models.Match `json:"match"`
	Pick  string       `json:"pick,omitempty"`
	Won   bool         `json:"won"`
	Lost  bool         `json:"lost"`
}

type UserStats struct {
	TotalCompleted int `json:"total_completed"`
	Voted          int `json:"voted"`
	Correct        int `json:"correct"`

	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	WinRatePct       int `json:"win_rate_pct"`
	ParticipationPct int `json:"participation_pct"`

	FavoriteTeam       string `json:"favorite_team,omitempty"`
	FavoriteSuccessPct int    `json:"favorite_success_pct"`
	NemesisTeam        string `json:"nemesis_team,omitempty"`

	// History holds the 10 most recent terminal matches, newest first.
	History []HistoryEntry `json:"history"`
}

// Stats walks the user's terminal matches oldest to newest. A missed pick
// or a lost or abandoned match resets the running streak; favorite is the
// most-picked team, nemesis the team that most often won when the user
// picked the other side. Frequency ties keep the first-seen team.
func (p *Projector) Stats(userID string) UserStats {
	terminal := p.terminalMatchesAscending()

	stats := UserStats{TotalCompleted: len(terminal)}
	if stats.TotalCompleted == 0 {
		return stats
	}

	pickFreq := map[string]int{}
	pickWins := map[string]int{}
	lossWinners := map[string]int{}
	var pickOrder, lossOrder []string

	streak := 0
	for _, m := range terminal {
		pick := p.CurrentPick(m.ID, userID)
		won := pick != "" && m.Status == models.StatusCompleted && pick == m.Winner
		lost := pick != "" && m.Status == models.StatusCompleted && pick != m.Winner

		stats.History = append(stats.History, HistoryEntry{Match: m, Pick: pick, Won: won, Lost: lost})

		if pick == "" {
			streak = 0
			continue
		}

		stats.Voted++
		if _, seen := pickFreq[pick]; !seen {
			pickOrder = append(pickOrder, pick)
		}
		pickFreq[pick]++

		switch {
		case won:
			stats.Correct++
			pickWins[pick]++
			streak++
			if streak > stats.LongestStreak {
				stats.LongestStreak = streak
			}
		case lost:
			streak = 0
			if m.Winner != "" {
				if _, seen := lossWinners[m.Winner]; !seen {
					lossOrder = append(lossOrder, m.Winner)
				}
				lossWinners[m.Winner]++
			}
		default:
			// abandoned match breaks the streak too
			streak = 0
		}
	}
	stats.CurrentStreak = streak

	if stats.Voted > 0 {
		stats.WinRatePct = pct(stats.Correct, stats.Voted)
	}
	stats.ParticipationPct = pct(stats.Voted, stats.TotalCompleted)

	if fav, n := mostFrequent(pickFreq, pickOrder); n > 0 {
		stats.FavoriteTeam = fav
		stats.FavoriteSuccessPct = pct(pickWins[fav], n)
	}
	if nem, n := mostFrequent(lossWinners, lossOrder); n > 0 {
		stats.NemesisTeam = nem
	}

	// newest first, bounded
	if len(stats.History) > historyLimit {
		stats.History = stats.History[len(stats.History)-historyLimit:]
	}
	reverse(stats.History)

	return stats
}

func (p *Projector) terminalMatchesAscending() []models.Match {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []models.Match
	for _, m := range p.matches {
		if m.Terminal() {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledStart.Before(out[j].ScheduledStart)
	})
	return out
}

// mostFrequent resolves ties in favor of the team seen first, so the answer
// never flaps between rebuilds.
func mostFrequent(freq map[string]int, order []string) (string, int) {
	best, n := "", 0
	for _, team := range order {
		if freq[team] > n {
			best, n = team, freq[team]
		}
	}
	return best, n
}

func pct(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(float64(part)/float64(whole)*100 + 0.5)
}

func reverse(entries []HistoryEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
