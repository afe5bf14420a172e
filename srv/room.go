package srv

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"yoink.exe.dev/dictionary"
)

// generateShortID returns a short random token (the first 8 hex
// characters of a random UUID) used to disambiguate same-named players
// within a room.
func generateShortID() string {
	return uuid.NewString()[:8]
}

// Phase is the room's position in its state machine.
type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhasePlaying      Phase = "playing"
	PhaseIntermission Phase = "intermission"
	PhaseFinished     Phase = "finished"
)

// roundMultipliers is the fixed per-round scoring multiplier table. A
// room configured for more rounds than this table has entries reuses
// the last multiplier for the overflow rounds.
var roundMultipliers = []float64{1.0, 1.2, 1.5}

// Fixed settings, not configurable per room.
const (
	maxWordLen      = bankCapacity
	yoinkCooldown   = 500 * time.Millisecond
	defaultMinLen   = 3
	minMinLen       = 2
	maxMinLen       = 6
	defaultRounds   = 3
	minRounds       = 1
	maxRounds       = 5
	defaultRoundSec = 60
	minRoundSec     = 15
	maxRoundSec     = 300
	defaultInterSec = 10
	minInterSec     = 3
	maxInterSec     = 30
)

// RoomSettings holds the host-configurable knobs, each independently
// clamped to its documented range.
type RoomSettings struct {
	Rounds           int `json:"rounds"`
	RoundDurationSec int `json:"roundDurationSec"`
	IntermissionSec  int `json:"intermissionSec"`
	MinWordLen       int `json:"minLen"`
}

// SettingsPatch is the wire shape of settings:update: every field is
// optional, and a present field overwrites the corresponding RoomSettings
// field while an absent one leaves it untouched. Plain RoomSettings
// can't represent "the host didn't mention this field" since its ints
// have no nil state.
type SettingsPatch struct {
	Rounds           *int `json:"rounds,omitempty"`
	RoundDurationSec *int `json:"roundDurationSec,omitempty"`
	IntermissionSec  *int `json:"intermissionSec,omitempty"`
	MinWordLen       *int `json:"minLen,omitempty"`
}

// apply overlays the fields p carries onto base, clamping only what
// changed, then returns the merged, fully clamped settings.
func (p SettingsPatch) apply(base RoomSettings) RoomSettings {
	out := base
	if p.Rounds != nil {
		out.Rounds = clampInt(*p.Rounds, minRounds, maxRounds)
	}
	if p.RoundDurationSec != nil {
		out.RoundDurationSec = clampInt(*p.RoundDurationSec, minRoundSec, maxRoundSec)
	}
	if p.IntermissionSec != nil {
		out.IntermissionSec = clampInt(*p.IntermissionSec, minInterSec, maxInterSec)
	}
	if p.MinWordLen != nil {
		out.MinWordLen = clampInt(*p.MinWordLen, minMinLen, maxMinLen)
	}
	return out
}

// defaultRoomSettings returns the settings a newly created room starts
// with.
func defaultRoomSettings() RoomSettings {
	return RoomSettings{
		Rounds:           defaultRounds,
		RoundDurationSec: defaultRoundSec,
		IntermissionSec:  defaultInterSec,
		MinWordLen:       defaultMinLen,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Player is one connected participant. Fields are only ever touched from
// the owning room's actor goroutine.
type Player struct {
	ID         string
	Name       string
	Bank       *Bank
	TotalScore int
	RoundScore int
	LastYoink  time.Time

	// Send is the outbound channel the connection's write pump drains;
	// the actor never performs I/O directly.
	Send chan []byte
}

// newPlayer creates a player with an empty bank, ready to join a room.
// send is the connection's outbound queue, owned by the transport layer.
func newPlayer(id, name string, send chan []byte) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Bank: &Bank{},
		Send: send,
	}
}

// Room is one game session: a lobby, shared grid, bank-holding players,
// and a round clock, all owned exclusively by a single actor goroutine.
type Room struct {
	Code     string
	Settings RoomSettings
	HostID   string

	players map[string]*Player
	order   []string // join order; used for host succession

	grid  *Grid
	bag   *LetterBag
	dict  dictionary.Set
	valid *validator

	phase         Phase
	roundIndex    int       // 1-based; 0 before the first round starts
	phaseDeadline time.Time // zero while no round/intermission timer is armed

	roundGen    int
	spawnGen    int
	roundCancel func()
	spawnCancel func()

	cmds chan roomCmd
	done chan struct{}

	onEmpty func(code string)
}

// buildRoom assembles a Room in PhaseLobby without starting its actor
// goroutine, so tests can drive its command handlers directly from a
// single goroutine.
func buildRoom(code string, dict dictionary.Set, rng Source, onEmpty func(string)) *Room {
	settings := defaultRoomSettings()
	return &Room{
		Code:     code,
		Settings: settings,
		players:  make(map[string]*Player),
		grid:     NewGrid(),
		bag:      NewLetterBag(rng),
		dict:     dict,
		valid:    newValidator(dict, settings.MinWordLen),
		phase:    PhaseLobby,
		cmds:     make(chan roomCmd, 64),
		done:     make(chan struct{}),
		onEmpty:  onEmpty,
	}
}

// newRoom builds a room and starts its actor loop.
func newRoom(code string, dict dictionary.Set, rng Source, onEmpty func(string)) *Room {
	r := buildRoom(code, dict, rng, onEmpty)
	go r.run()
	return r
}

// send enqueues cmd on the room's actor loop. It never blocks the
// caller indefinitely: the channel is generously buffered and the actor
// never performs blocking I/O, so backpressure only occurs under actual
// overload.
func (r *Room) send(cmd roomCmd) {
	select {
	case r.cmds <- cmd:
	case <-r.done:
	}
}

// Registry owns the set of live rooms, keyed by join code. Teardown is
// immediate on last-player-disconnect — rooms vanish when empty, with
// no grace period, a deliberate departure from grace-period cleanup.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	dict  dictionary.Set
}

// NewRegistry returns an empty registry backed by dict.
func NewRegistry(dict dictionary.Set) *Registry {
	return &Registry{rooms: make(map[string]*Room), dict: dict}
}

// codeAlphabet avoids visually ambiguous characters (0/O, 1/I) so codes
// are easy to read aloud and type back in.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateCode returns a random 5-character join code.
func generateCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

// JoinOrCreate returns the room at code, creating one under that exact
// code if it doesn't exist yet — a host may stand up a room under a
// code of their own choosing, not only a server-generated one. If code
// is empty, a fresh unique code is generated first.
func (reg *Registry) JoinOrCreate(code string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if code == "" {
		generated := ""
		for attempt := 0; attempt < 10; attempt++ {
			c, err := generateCode()
			if err != nil {
				return nil, fmt.Errorf("generate room code: %w", err)
			}
			if _, exists := reg.rooms[c]; !exists {
				generated = c
				break
			}
		}
		if generated == "" {
			return nil, fmt.Errorf("could not allocate a unique room code")
		}
		code = generated
	}

	if room, ok := reg.rooms[code]; ok {
		return room, nil
	}
	room := newRoom(code, reg.dict, NewSystemSource(), reg.destroy)
	reg.rooms[code] = room
	return room, nil
}

// destroy removes code from the registry. Called by a room's actor once
// its last player has disconnected.
func (reg *Registry) destroy(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// Count reports the number of live rooms, for diagnostics.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// Shutdown tears down every live room, for a graceful process exit.
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.Unlock()

	for _, room := range rooms {
		room.Shutdown()
	}
}
