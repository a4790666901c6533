package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gabrielgmendonca/flip7/internal/app"
	"github.com/gabrielgmendonca/flip7/internal/config"
	"github.com/gabrielgmendonca/flip7/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Engine    *app.Service                // rules engine driving the table
	Presences map[string]runtime.Presence // map UserId -> Presence for targeted messaging

	mu     sync.Mutex
	queued []app.Event // events produced by the next-round timer, drained each loop tick
}

// enqueueHookEvents is installed as the engine's round-start hook. The timer
// fires off the match loop goroutine, so events are queued and broadcast on
// the next tick.
func (ms *MatchState) enqueueHookEvents(events []app.Event) {
	ms.mu.Lock()
	ms.queued = append(ms.queued, events...)
	ms.mu.Unlock()
}

func (ms *MatchState) drainHookEvents() []app.Event {
	ms.mu.Lock()
	events := ms.queued
	ms.queued = nil
	ms.mu.Unlock()
	return events
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadGameConfig(GameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.DefaultGameConfig()
	if loaded := config.GetGameConfig(); loaded != nil {
		cfg = *loaded
	}

	// Environment overrides: process env (from .env in development), then the
	// runtime env map from the Nakama configuration.
	env := config.FromOSEnv()
	if ctxEnv, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		for key, val := range ctxEnv {
			env[key] = val
		}
	}
	cfg = cfg.ApplyEnv(env)

	settings := domain.Settings{
		WinThreshold:   cfg.WinThreshold,
		MinPlayers:     cfg.MinPlayers,
		MaxPlayers:     cfg.MaxPlayers,
		TurnSeconds:    cfg.TurnSeconds,
		NextRoundDelay: cfg.NextRoundDelay(),
	}

	state := &MatchState{
		Engine:    app.NewService(settings, nil, nil, nil),
		Presences: make(map[string]runtime.Presence),
	}
	state.Engine.SetRoundStartHook(state.enqueueHookEvents)

	labelBytes, err := json.Marshal(Label{Open: cfg.MaxPlayers, Game: GameLabelName, Phase: string(domain.PhaseLobby)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 10
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	snap := matchState.Engine.Snapshot()
	if snap.Phase != domain.PhaseLobby {
		// Mid-game the only welcome arrivals are seated players rejoining.
		for _, p := range snap.Players {
			if p.ID == presence.GetUserId() {
				return matchState, true, ""
			}
		}
		return matchState, false, "match_in_progress"
	}
	if len(snap.Players) >= snap.Settings.MaxPlayers {
		return matchState, false, "match_full"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, presence := range presences {
		userID := presence.GetUserId()
		matchState.Presences[userID] = presence

		events, err := matchState.Engine.HandleReconnect(userID)
		if errors.Is(err, app.ErrUnknownPlayer) {
			name := presence.GetUsername()
			if name == "" {
				name = userID
			}
			events, err = matchState.Engine.Join(userID, name)
		}
		if err != nil {
			logger.Warn("MatchJoin: Could not seat user %s: %v", userID, err)
			continue
		}
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshot(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, presence := range presences {
		userID := presence.GetUserId()
		delete(matchState.Presences, userID)

		// In the lobby a leaver gives up the seat; mid-game the seat is kept
		// and the player is marked disconnected.
		events, err := matchState.Engine.Leave(userID)
		if errors.Is(err, app.ErrWrongPhase) {
			events, err = matchState.Engine.HandleDisconnect(userID)
		}
		if err != nil {
			logger.Warn("MatchLeave: User %s: %v", userID, err)
			continue
		}
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: No presences remain, terminating match.")
		matchState.Engine.Shutdown()
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshot(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	// Events the next-round timer produced since the last tick.
	if queued := matchState.drainHookEvents(); len(queued) > 0 {
		mh.applyResult(matchState, dispatcher, logger, queued)
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(matchState, dispatcher, logger, msg)
		case OpDraw:
			mh.handleDraw(matchState, dispatcher, logger, msg)
		case OpStop:
			mh.handleStop(matchState, dispatcher, logger, msg)
		case OpChooseFreezeTarget:
			mh.handleChooseFreezeTarget(matchState, dispatcher, logger, msg)
		case OpChooseDrawThreeTarget:
			mh.handleChooseDrawThreeTarget(matchState, dispatcher, logger, msg)
		case OpResolveBust:
			mh.handleResolveBust(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown op code %d from user %s.", msg.GetOpCode(), msg.GetUserId())
		}
	}

	return matchState
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		matchState.Engine.Shutdown()
	}
	logger.Debug("MatchTerminate: Match terminated.")
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func (mh *matchHandler) handleStartGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	events, err := state.Engine.StartGame(msg.GetUserId())
	if err != nil {
		logger.Warn("StartGame: User %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.applyResult(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleDraw(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	_, events, err := state.Engine.Draw(msg.GetUserId())
	if err != nil {
		logger.Warn("Draw: User %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.applyResult(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleStop(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	events, err := state.Engine.Stop(msg.GetUserId())
	if err != nil {
		logger.Warn("Stop: User %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.applyResult(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleChooseFreezeTarget(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req struct {
		TargetID string `json:"target_id"`
	}
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("ChooseFreezeTarget: User %s sent malformed payload: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}

	events, err := state.Engine.ChooseFreezeTarget(msg.GetUserId(), req.TargetID)
	if err != nil {
		logger.Warn("ChooseFreezeTarget: User %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.applyResult(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleChooseDrawThreeTarget(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req struct {
		TargetID string `json:"target_id"`
	}
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("ChooseDrawThreeTarget: User %s sent malformed payload: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}

	events, err := state.Engine.ChooseDrawThreeTarget(msg.GetUserId(), req.TargetID)
	if err != nil {
		logger.Warn("ChooseDrawThreeTarget: User %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.applyResult(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleResolveBust(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("ResolveBust: User %s sent malformed payload: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}

	events, err := state.Engine.ResolveBustChoice(msg.GetUserId(), req.Accept)
	if err != nil {
		logger.Warn("ResolveBust: User %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), err)
		return
	}
	mh.applyResult(state, dispatcher, logger, events)
}

// applyResult broadcasts the events of an accepted intent, refreshes the
// label on round and game boundaries, and closes with a full snapshot.
func (mh *matchHandler) applyResult(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	mh.broadcastEvents(state, dispatcher, logger, events)
	for _, ev := range events {
		if ev.Kind == app.EventRoundStarted || ev.Kind == app.EventRoundEnded || ev.Kind == app.EventGameEnded {
			mh.updateLabel(state, dispatcher, logger)
			break
		}
	}
	mh.broadcastSnapshot(state, dispatcher, logger)
}

func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, payload, ok := convertEvent(ev)
		if !ok {
			logger.Warn("BroadcastEvents: No wire mapping for event kind %q.", ev.Kind)
			continue
		}
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("BroadcastEvents: Failed to marshal %q event: %v", ev.Kind, err)
			continue
		}

		// Empty recipients means broadcast to the whole match.
		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, userID := range ev.Recipients {
				if presence, ok := state.Presences[userID]; ok {
					recipients = append(recipients, presence)
				}
			}
			if len(recipients) == 0 {
				continue
			}
		}

		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Error("BroadcastEvents: Failed to broadcast %q event: %v", ev.Kind, err)
		}
	}
}

func (mh *matchHandler) broadcastSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := json.Marshal(toSnapshotDTO(state.Engine.Snapshot()))
	if err != nil {
		logger.Error("BroadcastSnapshot: Failed to marshal snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpStateSnapshot, data, nil, nil, true); err != nil {
		logger.Error("BroadcastSnapshot: Failed to broadcast: %v", err)
	}
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("SendError: No presence for user %s.", userID)
		return
	}
	data, err := json.Marshal(GameError{Code: 400, Message: cause.Error()})
	if err != nil {
		logger.Error("SendError: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("SendError: Failed to send to user %s: %v", userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snap := state.Engine.Snapshot()
	open := 0
	if snap.Phase == domain.PhaseLobby {
		open = snap.Settings.MaxPlayers - len(snap.Players)
	}
	labelBytes, err := json.Marshal(Label{Open: open, Game: GameLabelName, Phase: string(snap.Phase)})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal label: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update label: %v", err)
	}
}
