package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/gabrielgmendonca/flip7/internal/domain"
	"github.com/gabrielgmendonca/flip7/internal/ports"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrWrongPhase    = errors.New("operation not valid in current phase")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNotYourChoice = errors.New("pending choice belongs to another player")
	ErrInvalidTarget = errors.New("target is not eligible")
	ErrUnknownPlayer = errors.New("player not found")
	ErrTableFull     = errors.New("no seats available")
	ErrIDTaken       = errors.New("player id already seated")
	ErrTooFewPlayers = errors.New("not enough players to start")
	ErrNotHost       = errors.New("only the host can start the game")
)

// Service is the rules engine for one table. It owns the game state and
// serializes every intent, including the autonomous next-round timer, behind
// one mutex. The transport layer maps authenticated connections to the
// player ids used here.
type Service struct {
	mu    sync.Mutex
	game  *domain.Game
	rng   *rand.Rand
	log   logrus.FieldLogger
	sched ports.Scheduler

	roundTimer ports.Timer
	hook       func([]Event)
}

// NewService constructs the engine for a fresh table. Nil dependencies fall
// back to production defaults: the standard logger, the process clock and a
// time-seeded rng.
func NewService(settings domain.Settings, log logrus.FieldLogger, sched ports.Scheduler, rng *rand.Rand) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if sched == nil {
		sched = ports.SystemScheduler{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	id := uuid.New()
	return &Service{
		game:  domain.NewGame(id, settings),
		rng:   rng,
		log:   log.WithField("game_id", id.String()),
		sched: sched,
	}
}

// SetRoundStartHook registers the callback invoked with the events of a
// round opened by the autonomous timer. It runs on the scheduler goroutine,
// outside the engine lock.
func (s *Service) SetRoundStartHook(fn func([]Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

// Shutdown cancels any armed next-round timer. Call it when the room closes
// so the timer cannot fire against a torn-down match.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
}

func (s *Service) stopTimer() {
	if s.roundTimer != nil {
		s.roundTimer.Stop()
		s.roundTimer = nil
	}
}

// Join seats a new player in the lobby. The first player to join becomes the
// table host.
func (s *Service) Join(playerID, name string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	if g.Phase != domain.PhaseLobby {
		return nil, ErrWrongPhase
	}
	if g.PlayerByID(playerID) != nil {
		return nil, ErrIDTaken
	}
	if len(g.Players) >= g.Settings.MaxPlayers {
		return nil, ErrTableFull
	}

	p := &domain.Player{
		ID:        playerID,
		Name:      name,
		Seat:      len(g.Players),
		Host:      len(g.Players) == 0,
		Connected: true,
		Status:    domain.StatusActive,
	}
	g.Players = append(g.Players, p)
	s.log.WithFields(logrus.Fields{"player": playerID, "seat": p.Seat}).Info("player joined")

	return []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{PlayerID: playerID, Name: name, Seat: p.Seat, Host: p.Host},
	}}, nil
}

// Leave removes a player from the lobby, compacting seats and migrating the
// host role if needed. Once the game has started, use HandleDisconnect.
func (s *Service) Leave(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	if g.Phase != domain.PhaseLobby {
		return nil, ErrWrongPhase
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}

	wasHost := p.Host
	kept := make([]*domain.Player, 0, len(g.Players)-1)
	for _, q := range g.Players {
		if q.ID != playerID {
			kept = append(kept, q)
		}
	}
	g.Players = kept
	for i, q := range g.Players {
		q.Seat = i
	}
	if wasHost && len(g.Players) > 0 {
		g.Players[0].Host = true
	}
	hostID := ""
	for _, q := range g.Players {
		if q.Host {
			hostID = q.ID
		}
	}
	s.log.WithField("player", playerID).Info("player left")

	return []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{PlayerID: playerID, HostID: hostID},
	}}, nil
}

// StartGame shuffles the deck, picks a random dealer and opens round one.
// Only the host may start, with at least Settings.MinPlayers seated.
func (s *Service) StartGame(actorID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	if g.Phase != domain.PhaseLobby {
		return nil, ErrWrongPhase
	}
	actor := g.PlayerByID(actorID)
	if actor == nil {
		return nil, ErrUnknownPlayer
	}
	if !actor.Host {
		return nil, ErrNotHost
	}
	if len(g.Players) < g.Settings.MinPlayers {
		return nil, ErrTooFewPlayers
	}

	g.Deck.Shuffle(s.rng)
	g.DealerSeat = s.rng.Intn(len(g.Players))
	s.log.WithFields(logrus.Fields{"players": len(g.Players), "dealer_seat": g.DealerSeat}).Info("game started")

	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{DealerSeat: g.DealerSeat},
	}}
	return s.startRound(events), nil
}

// HandleDisconnect marks an in-game player disconnected. If the engine was
// waiting on them it resolves the interaction on their behalf to keep the
// table moving: a bust choice is declined, a target choice takes the first
// recorded target still able to act. If it was simply their turn, the turn
// advances.
func (s *Service) HandleDisconnect(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	if g.Phase == domain.PhaseLobby {
		return nil, ErrWrongPhase
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if !p.Connected {
		return nil, nil
	}

	p.Connected = false
	wasTurn := g.Phase == domain.PhasePlayerTurn && g.TurnSeat == p.Seat
	if p.Status == domain.StatusActive {
		p.Status = domain.StatusDisconnected
	}
	s.log.WithField("player", playerID).Info("player disconnected")
	events := []Event{{
		Kind:    EventPlayerDisconnected,
		Payload: PlayerDisconnectedPayload{PlayerID: playerID},
	}}

	if g.Pending != nil && g.Pending.PlayerID == playerID {
		return s.autoResolvePending(events), nil
	}
	if wasTurn {
		events = s.advanceTurn(events)
	}
	return events, nil
}

// HandleReconnect restores a returning player's connectivity. A player who
// was sitting out as disconnected rejoins the current round as active.
func (s *Service) HandleReconnect(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.game.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p.Connected {
		return nil, nil
	}
	p.Connected = true
	if p.Status == domain.StatusDisconnected {
		p.Status = domain.StatusActive
	}
	s.log.WithField("player", playerID).Info("player reconnected")

	return []Event{{
		Kind:    EventPlayerReconnected,
		Payload: PlayerReconnectedPayload{PlayerID: playerID},
	}}, nil
}

// RenamePlayer rewrites a player's id after a transport-level re-identify,
// patching every reference the engine holds, including a pending interaction
// waiting on the old id.
func (s *Service) RenamePlayer(oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	p := g.PlayerByID(oldID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if newID == oldID {
		return nil
	}
	if g.PlayerByID(newID) != nil {
		return ErrIDTaken
	}

	p.ID = newID
	if g.Pending != nil {
		if g.Pending.PlayerID == oldID {
			g.Pending.PlayerID = newID
		}
		for i, id := range g.Pending.Eligible {
			if id == oldID {
				g.Pending.Eligible[i] = newID
			}
		}
	}
	if g.Run != nil && g.Run.TargetID == oldID {
		g.Run.TargetID = newID
	}
	if g.WinnerID == oldID {
		g.WinnerID = newID
	}
	s.log.WithFields(logrus.Fields{"old": oldID, "new": newID}).Info("player renamed")
	return nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
