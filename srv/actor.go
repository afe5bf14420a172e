package srv

import (
	"fmt"
	"log/slog"
	"time"
)

// roomCmd is the sum type the room actor's loop dispatches on. Every
// mutation of a Room's state arrives as one of these, so a single
// goroutine per room is enough to make yoink arbitration and
// submit-after-yoink ordering race-free without a mutex.
type roomCmd interface{ applyTo(r *Room) }

type cmdJoin struct {
	name  string
	send  chan []byte
	reply chan *Player
}

type cmdLeave struct{ playerID string }

type cmdStart struct{ playerID string }

type cmdSettings struct {
	playerID string
	patch    SettingsPatch
}

type cmdYoink struct {
	playerID string
	index    int
}

type cmdSubmit struct {
	playerID string
	word     string
	indices  []int
}

type cmdSpawnFire struct{ generation int }

type cmdRoundFire struct{ generation int }

// cmdTick fires once a second for as long as the room is alive, driving
// the observational lobby:state broadcast that lets clients render a
// live countdown even between state-mutating events.
type cmdTick struct{}

type cmdShutdown struct{}

// Join adds a new player under name, wired to sendCh for outbound
// delivery, and returns the created Player. Returns nil if the room has
// already torn down.
func (r *Room) Join(name string, sendCh chan []byte) *Player {
	reply := make(chan *Player, 1)
	r.send(cmdJoin{name: name, send: sendCh, reply: reply})
	select {
	case p := <-reply:
		return p
	case <-r.done:
		return nil
	}
}

// Leave removes playerID, tearing the room down if it was the last one.
func (r *Room) Leave(playerID string) { r.send(cmdLeave{playerID: playerID}) }

// Start begins round 1 if the caller is the host and the room is in
// PhaseLobby or PhaseFinished; otherwise a no-op.
func (r *Room) Start(playerID string) { r.send(cmdStart{playerID: playerID}) }

// UpdateSettings applies a host's partial settings change: only fields
// patch carries are overwritten, each clamped to range.
func (r *Room) UpdateSettings(playerID string, patch SettingsPatch) {
	r.send(cmdSettings{playerID: playerID, patch: patch})
}

// Yoink attempts to take the letter at index into playerID's bank.
func (r *Room) Yoink(playerID string, index int) {
	r.send(cmdYoink{playerID: playerID, index: index})
}

// Submit attempts to spell and score word from playerID's bank. indices
// may be empty, asking the room to reconstruct them.
func (r *Room) Submit(playerID, word string, indices []int) {
	r.send(cmdSubmit{playerID: playerID, word: word, indices: indices})
}

// Shutdown tears the room down immediately, stopping its timers and
// unregistering it, independent of whether any players remain. Used for
// process-wide shutdown.
func (r *Room) Shutdown() { r.send(cmdShutdown{}) }

// run is the room's single-goroutine actor loop. It owns every field of
// Room; nothing outside this loop may touch them.
func (r *Room) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				r.send(cmdTick{})
			case <-r.done:
				return
			}
		}
	}()

	for {
		select {
		case cmd := <-r.cmds:
			r.apply(cmd)
		case <-r.done:
			return
		}
	}
}

// apply runs one command, catching panics at the event boundary so a
// bad event is dropped with a log line instead of killing the room.
func (r *Room) apply(cmd roomCmd) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("room command panicked", "code", r.Code, "cmd", fmt.Sprintf("%T", cmd), "panic", rec)
		}
	}()
	cmd.applyTo(r)
}

func (c cmdJoin) applyTo(r *Room) {
	id := c.name + "#" + generateShortID()
	p := newPlayer(id, c.name, c.send)
	r.players[id] = p
	r.order = append(r.order, id)
	if r.HostID == "" {
		r.HostID = id
	}
	c.reply <- p

	r.broadcastLobbyState()
}

func (c cmdLeave) applyTo(r *Room) {
	if _, ok := r.players[c.playerID]; !ok {
		return
	}
	delete(r.players, c.playerID)
	for i, id := range r.order {
		if id == c.playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.HostID == c.playerID {
		if len(r.order) > 0 {
			r.HostID = r.order[0]
		} else {
			r.HostID = ""
		}
	}

	if len(r.players) == 0 {
		r.teardown()
		return
	}
	r.broadcastLobbyState()
}

func (c cmdStart) applyTo(r *Room) {
	if c.playerID != r.HostID {
		return
	}
	if r.phase != PhaseLobby && r.phase != PhaseFinished {
		return
	}
	if len(r.players) == 0 {
		return
	}
	for _, p := range r.players {
		p.TotalScore = 0
	}
	r.startRound(1)
}

func (c cmdSettings) applyTo(r *Room) {
	if c.playerID != r.HostID {
		return
	}
	if r.phase != PhaseLobby && r.phase != PhaseFinished {
		return
	}
	r.Settings = c.patch.apply(r.Settings)
	r.valid = newValidator(r.dict, r.Settings.MinWordLen)
	r.broadcastLobbyState()
}

func (c cmdYoink) applyTo(r *Room) {
	p, ok := r.players[c.playerID]
	if !ok || r.phase != PhasePlaying {
		return
	}

	if !p.LastYoink.IsZero() && time.Since(p.LastYoink) < yoinkCooldown {
		r.sendTo(c.playerID, event("yoink:rejected", map[string]any{
			"index":  c.index,
			"reason": string(ErrCooldown),
		}))
		return
	}
	if p.Bank.Full() {
		r.sendTo(c.playerID, event("yoink:rejected", map[string]any{
			"index":  c.index,
			"reason": string(ErrBankFull),
		}))
		return
	}

	letter, ok := r.grid.TakeAt(c.index)
	if !ok {
		// Stale client view of an already-emptied slot; not an error
		// worth a reply, the next lobby:state carries the truth.
		return
	}

	p.LastYoink = time.Now()
	p.Bank.Append(letter)

	r.broadcastAll(event("tile:yoinked", map[string]any{
		"index":      c.index,
		"letter":     string(letter),
		"playerId":   c.playerID,
		"playerName": p.Name,
	}))
	r.rescheduleSpawn()
	r.broadcastLobbyState()
}

func (c cmdSubmit) applyTo(r *Room) {
	p, ok := r.players[c.playerID]
	if !ok || r.phase != PhasePlaying {
		return
	}

	indices, rerr := r.valid.resolve(p.Bank, c.word, c.indices)
	if rerr != nil {
		r.sendTo(c.playerID, event("word:rejected", map[string]any{
			"word":   c.word,
			"reason": string(rerr.Code),
		}))
		return
	}

	removed, ok := p.Bank.removeAt(indices)
	if !ok {
		r.sendTo(c.playerID, event("word:rejected", map[string]any{
			"word":   c.word,
			"reason": string(ErrNotInBank),
		}))
		return
	}
	word := lettersToWord(removed)
	multiplier := roundMultiplier(roundMultipliers, r.roundIndex)
	score := scoreWord(word, multiplier)

	p.RoundScore += score
	p.TotalScore += score

	r.broadcastAll(event("word:accepted", map[string]any{
		"playerId": p.ID,
		"name":     p.Name,
		"word":     word,
		"letters":  letterStrings(removed),
		"points":   score,
		"feed":     fmt.Sprintf("%s scored %d points with %q", p.Name, score, word),
	}))
	r.broadcastLobbyState()
}

func (c cmdSpawnFire) applyTo(r *Room) {
	if c.generation != r.spawnGen || r.phase != PhasePlaying {
		return
	}
	empty := r.grid.EmptyIndices()
	if len(empty) == 0 {
		return
	}
	index := empty[r.bag.PickIndex(len(empty))]
	letter := r.bag.Sample()
	r.grid.FillAt(index, letter)
	r.broadcastAll(event("tile:spawned", map[string]any{
		"index":  index,
		"letter": string(letter),
	}))
	r.rescheduleSpawn()
	r.broadcastLobbyState()
}

func (c cmdRoundFire) applyTo(r *Room) {
	if c.generation != r.roundGen {
		return
	}
	switch r.phase {
	case PhasePlaying:
		r.endRound()
	case PhaseIntermission:
		r.advanceFromIntermission(c.generation)
	}
}

// applyTo just re-broadcasts the current projection; no state changes.
func (c cmdTick) applyTo(r *Room) {
	r.broadcastLobbyState()
}

func (c cmdShutdown) applyTo(r *Room) {
	r.teardown()
}

// startRound moves the room into PhasePlaying for round n: clears the
// grid and fills it, resets every player's bank and round score, arms
// the round clock off an absolute deadline, and hands the grid to the
// spawn scheduler.
func (r *Room) startRound(n int) {
	r.phase = PhasePlaying
	r.roundIndex = n
	r.grid.ResetEmpty()
	r.grid.FillAll(r.bag)
	for _, p := range r.players {
		p.Bank.Reset()
		p.RoundScore = 0
		p.LastYoink = time.Time{}
	}

	r.roundGen++
	gen := r.roundGen
	deadline := time.Now().Add(time.Duration(r.Settings.RoundDurationSec) * time.Second)
	r.phaseDeadline = deadline
	r.roundCancel = armTimerAt(deadline, func() { r.send(cmdRoundFire{generation: gen}) })

	r.broadcastAll(event("round:started", map[string]any{
		"round":      n,
		"rounds":     r.Settings.Rounds,
		"multiplier": roundMultiplier(roundMultipliers, n),
	}))
	r.broadcastLobbyState()
	r.rescheduleSpawn()
}

// endRound stops the spawn scheduler, reveals round scores to everyone,
// and either starts an intermission before the next round or finishes
// the game.
func (r *Room) endRound() {
	r.cancelSpawn()
	r.cancelRound()

	r.broadcastAll(event("round:ended", map[string]any{
		"round":       r.roundIndex,
		"totalRounds": r.Settings.Rounds,
		"leaderboard": r.buildLeaderboard(),
	}))

	if r.roundIndex >= r.Settings.Rounds {
		r.finishGame()
		return
	}

	r.phase = PhaseIntermission
	r.roundGen++
	gen := r.roundGen
	deadline := time.Now().Add(time.Duration(r.Settings.IntermissionSec) * time.Second)
	r.phaseDeadline = deadline
	r.roundCancel = armTimerAt(deadline, func() { r.send(cmdRoundFire{generation: gen}) })
	r.broadcastLobbyState()
}

// advanceFromIntermission starts the next round once the intermission
// deadline fires; cmdRoundFire.applyTo routes here when phase is
// PhaseIntermission.
func (r *Room) advanceFromIntermission(generation int) {
	if generation != r.roundGen || r.phase != PhaseIntermission {
		return
	}
	r.startRound(r.roundIndex + 1)
}

// finishGame broadcasts final standings and parks the room in
// PhaseFinished with scores intact, so everyone sees the final board
// until the host starts a new game. game:start from here replays in
// place under the same join code.
func (r *Room) finishGame() {
	r.phase = PhaseFinished
	r.phaseDeadline = time.Time{}
	r.broadcastAll(event("game:ended", map[string]any{"leaderboard": r.buildLeaderboard()}))
	r.broadcastLobbyState()
}

// rescheduleSpawn cancels any pending spawn and, if the grid has room,
// arms a new one off the current occupancy. Called after every change
// to grid occupancy so the interval always reflects the live count
// rather than the count at the time the previous timer was armed.
func (r *Room) rescheduleSpawn() {
	r.cancelSpawn()
	occupied := r.grid.Count()
	if occupied >= gridSize {
		return
	}
	r.spawnGen++
	gen := r.spawnGen
	interval := spawnInterval(occupied)
	r.spawnCancel = armTimer(interval, func() { r.send(cmdSpawnFire{generation: gen}) })
}

func (r *Room) cancelSpawn() {
	if r.spawnCancel != nil {
		r.spawnCancel()
		r.spawnCancel = nil
	}
	r.spawnGen++
}

func (r *Room) cancelRound() {
	if r.roundCancel != nil {
		r.roundCancel()
		r.roundCancel = nil
	}
	r.roundGen++
}

// teardown stops all timers and unregisters the room. Teardown after
// the last disconnect is immediate, with no grace period.
func (r *Room) teardown() {
	r.cancelSpawn()
	r.cancelRound()
	if r.onEmpty != nil {
		r.onEmpty(r.Code)
	}
	close(r.done)
	slog.Info("room torn down", "code", r.Code)
}

func lettersToWord(letters []Letter) string {
	b := make([]byte, len(letters))
	for i, l := range letters {
		b[i] = byte(l)
	}
	return string(b)
}

// letterStrings renders each letter as its own single-character string,
// the wire shape word:accepted uses for the letters a word consumed.
func letterStrings(letters []Letter) []string {
	out := make([]string, len(letters))
	for i, l := range letters {
		out[i] = string(l)
	}
	return out
}
