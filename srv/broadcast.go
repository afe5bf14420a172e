package srv

import (
	"encoding/json"
	"sort"
	"time"
)

// event marshals a flat {"type": kind, ...fields} payload. Outgoing
// messages are plain maps, not named structs, matching the style the
// rest of the pack's message-heavy servers use for their event
// envelopes.
func event(kind string, fields map[string]any) []byte {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["type"] = kind
	b, err := json.Marshal(out)
	if err != nil {
		// fields are always JSON-safe primitives/slices built by this
		// package; a marshal failure here means a programming error.
		panic(err)
	}
	return b
}

// sendTo delivers payload to one player's outbound queue. Never blocks:
// a full queue means a stalled connection, and the event is dropped
// rather than stalling the room actor.
func (r *Room) sendTo(playerID string, payload []byte) {
	p, ok := r.players[playerID]
	if !ok {
		return
	}
	select {
	case p.Send <- payload:
	default:
	}
}

// broadcastAll delivers the same payload to every connected player.
func (r *Room) broadcastAll(payload []byte) {
	for id := range r.players {
		r.sendTo(id, payload)
	}
}

// broadcastEach builds and delivers a distinct payload per viewer,
// backing the per-viewer lobby:state projection: other players'
// in-progress round scores are hidden while phase=Playing.
func (r *Room) broadcastEach(build func(viewerID string) []byte) {
	for id := range r.players {
		r.sendTo(id, build(viewerID(id)))
	}
}

// viewerID is a tiny named type so broadcastEach's callback signature
// reads clearly at call sites.
type viewerID string

// playerSummary is the per-player projection embedded in lobby:state.
// scoresHidden redacts roundScore for everyone but the viewer while a
// round is in progress.
func (r *Room) playerSummary(viewer string) []map[string]any {
	out := make([]map[string]any, 0, len(r.order))
	for _, id := range r.order {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		hideRound := r.phase == PhasePlaying && id != viewer
		entry := map[string]any{
			"id":         p.ID,
			"name":       p.Name,
			"totalScore": p.TotalScore,
			"bankCount":  p.Bank.Len(),
			"isHost":     p.ID == r.HostID,
		}
		if hideRound {
			entry["roundScore"] = nil
		} else {
			entry["roundScore"] = p.RoundScore
		}
		out = append(out, entry)
	}
	return out
}

// gridPayload renders the grid for the wire: nil for empty slots,
// otherwise the single-letter string.
func gridPayload(g *Grid) []any {
	snap := g.Snapshot()
	out := make([]any, gridSize)
	for i, l := range snap {
		if l == nil {
			out[i] = nil
		} else {
			out[i] = string(*l)
		}
	}
	return out
}

// endsInMs reports milliseconds remaining until the active round or
// intermission deadline, clamped to zero once it has passed. Zero while
// no timer is armed (lobby, finished).
func (r *Room) endsInMs() int64 {
	if r.phaseDeadline.IsZero() {
		return 0
	}
	remaining := time.Until(r.phaseDeadline).Milliseconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// lobbyStateFor builds the full lobby:state projection for one viewer.
func (r *Room) lobbyStateFor(viewer string) []byte {
	fields := map[string]any{
		"id":              r.Code,
		"phase":           string(r.phase),
		"settings":        r.Settings,
		"hostId":          r.HostID,
		"players":         r.playerSummary(viewer),
		"pool":            gridPayload(r.grid),
		"currentRound":    r.roundIndex,
		"totalRounds":     r.Settings.Rounds,
		"endsInMs":        r.endsInMs(),
		"roundMultiplier": roundMultiplier(roundMultipliers, r.roundIndex),
		"scoresHidden":    r.phase == PhasePlaying,
		"bank":            []string{},
		"myScore":         0,
	}
	if p, ok := r.players[viewer]; ok {
		bank := p.Bank.Letters()
		letters := make([]string, len(bank))
		for i, l := range bank {
			letters[i] = string(l)
		}
		fields["bank"] = letters
		fields["myScore"] = p.TotalScore
	}
	return event("lobby:state", fields)
}

// leaderboardEntry is one row of a round:ended or game:ended leaderboard.
type leaderboardEntry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	RoundScore      int    `json:"roundScore"`
	CumulativeScore int    `json:"cumulativeScore"`
}

// buildLeaderboard ranks every player by cumulative score descending,
// breaking ties by name ascending so standings are deterministic.
func (r *Room) buildLeaderboard() []leaderboardEntry {
	out := make([]leaderboardEntry, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, leaderboardEntry{
			ID:              p.ID,
			Name:            p.Name,
			RoundScore:      p.RoundScore,
			CumulativeScore: p.TotalScore,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CumulativeScore != out[j].CumulativeScore {
			return out[i].CumulativeScore > out[j].CumulativeScore
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// broadcastLobbyState sends every player their own projection.
func (r *Room) broadcastLobbyState() {
	r.broadcastEach(func(v viewerID) []byte { return r.lobbyStateFor(string(v)) })
}
