package nakama

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/gabrielgmendonca/flip7/internal/app"
	"github.com/gabrielgmendonca/flip7/internal/domain"
	"github.com/gabrielgmendonca/flip7/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	opCodes        []int64
	lastOpCode     int64
	lastData       []byte
	lastPresences  []runtime.Presence
	lastLabel      string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.opCodes = append(md.opCodes, opCode)
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	md.lastPresences = presences
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) saw(opCode int64) bool {
	for _, op := range md.opCodes {
		if op == opCode {
			return true
		}
	}
	return false
}

// mockPresence is a minimal runtime.Presence for driving the handler.
type mockPresence struct {
	userID string
}

func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }
func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return true }
func (p mockPresence) GetUsername() string               { return p.userID }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// mockMatchData is a client message as the match loop receives it.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

// stubScheduler captures the next-round timer instead of running it, so a
// round ending mid-test never races the assertions.
type stubScheduler struct {
	fn func()
}

func (s *stubScheduler) After(d time.Duration, fn func()) ports.Timer {
	s.fn = fn
	return stubTimer{}
}

type stubTimer struct{}

func (stubTimer) Stop() bool { return true }

func newTestState(maxPlayers int) *MatchState {
	settings := domain.Settings{
		WinThreshold:   200,
		MinPlayers:     3,
		MaxPlayers:     maxPlayers,
		TurnSeconds:    15,
		NextRoundDelay: 5 * time.Second,
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	state := &MatchState{
		Engine:    app.NewService(settings, log, &stubScheduler{}, rand.New(rand.NewSource(7))),
		Presences: make(map[string]runtime.Presence),
	}
	state.Engine.SetRoundStartHook(state.enqueueHookEvents)
	return state
}

func joinUsers(t *testing.T, mh *matchHandler, state *MatchState, dispatcher *mockDispatcher, ids ...string) *MatchState {
	t.Helper()
	for _, id := range ids {
		presences := []runtime.Presence{mockPresence{userID: id}}
		next := mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, presences)
		updated, ok := next.(*MatchState)
		if !ok {
			t.Fatalf("MatchJoin returned %T, want *MatchState", next)
		}
		state = updated
	}
	return state
}

func sendMessage(mh *matchHandler, state *MatchState, dispatcher *mockDispatcher, userID string, opCode int64, payload string) {
	msg := mockMatchData{mockPresence: mockPresence{userID: userID}, opCode: opCode, data: []byte(payload)}
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.MatchData{msg})
}

// resolvePrompts answers any interaction the deal paused on, over the wire,
// until the engine settles.
func resolvePrompts(t *testing.T, mh *matchHandler, state *MatchState, dispatcher *mockDispatcher) {
	t.Helper()
	for i := 0; i < 10; i++ {
		snap := state.Engine.Snapshot()
		if snap.Pending == nil {
			return
		}
		owner := snap.Pending.PlayerID
		switch snap.Pending.Kind {
		case domain.PendingBustChoice:
			sendMessage(mh, state, dispatcher, owner, OpResolveBust, `{"accept":false}`)
		case domain.PendingFreezeTarget:
			sendMessage(mh, state, dispatcher, owner, OpChooseFreezeTarget, `{"target_id":"`+snap.Pending.Eligible[0]+`"}`)
		case domain.PendingDrawThreeTarget:
			sendMessage(mh, state, dispatcher, owner, OpChooseDrawThreeTarget, `{"target_id":"`+snap.Pending.Eligible[0]+`"}`)
		}
	}
	t.Fatal("pending interactions did not settle")
}

func TestMatchInitCreatesOpenLobby(t *testing.T) {
	mh := newMatchHandler()
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, map[string]string{
		"FLIP7_MIN_PLAYERS": "2",
	})

	stateRaw, tickRate, label := mh.MatchInit(ctx, noopLogger{}, nil, nil, nil)
	state, ok := stateRaw.(*MatchState)
	if !ok {
		t.Fatalf("MatchInit returned %T, want *MatchState", stateRaw)
	}
	if state.Engine == nil || state.Presences == nil {
		t.Fatal("MatchInit returned an unwired state")
	}
	if tickRate <= 0 {
		t.Fatalf("tickRate = %d, want > 0", tickRate)
	}

	var parsed Label
	if err := json.Unmarshal([]byte(label), &parsed); err != nil {
		t.Fatalf("Failed to unmarshal label %q: %v", label, err)
	}
	if parsed.Game != GameLabelName || parsed.Phase != string(domain.PhaseLobby) {
		t.Fatalf("Label = %+v, want game %q in lobby", parsed, GameLabelName)
	}
	if parsed.Open <= 0 {
		t.Fatalf("Label.Open = %d, want open seats", parsed.Open)
	}

	if got := state.Engine.Snapshot().Settings.MinPlayers; got != 2 {
		t.Fatalf("MinPlayers = %d, want env override 2", got)
	}
}

func TestMatchJoinSeatsAndAnnounces(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(6)

	state = joinUsers(t, mh, state, dispatcher, "u1", "u2")

	snap := state.Engine.Snapshot()
	if len(snap.Players) != 2 {
		t.Fatalf("Seated %d players, want 2", len(snap.Players))
	}
	if !snap.Players[0].Host || snap.Players[1].Host {
		t.Fatal("Expected first joiner to be the host")
	}
	if !dispatcher.saw(OpPlayerJoined) {
		t.Fatal("Expected a player_joined broadcast")
	}
	if dispatcher.lastOpCode != OpStateSnapshot {
		t.Fatalf("Last broadcast op = %d, want snapshot %d", dispatcher.lastOpCode, OpStateSnapshot)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatal("Expected a label update after joins")
	}

	var label Label
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &label); err != nil {
		t.Fatalf("Failed to unmarshal label: %v", err)
	}
	if label.Open != 4 {
		t.Fatalf("Label.Open = %d, want 4 seats left", label.Open)
	}
}

func TestMatchJoinAttemptGatesLobby(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(3)
	ctx := context.Background()

	_, allowed, _ := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, mockPresence{userID: "u1"}, nil)
	if !allowed {
		t.Fatal("Expected join into an empty lobby to be allowed")
	}

	state = joinUsers(t, mh, state, dispatcher, "u1", "u2", "u3")

	_, allowed, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, mockPresence{userID: "u4"}, nil)
	if allowed || reason != "match_full" {
		t.Fatalf("Full lobby attempt = (%t, %q), want rejection with match_full", allowed, reason)
	}

	sendMessage(mh, state, dispatcher, "u1", OpStartGame, "")

	_, allowed, reason = mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, mockPresence{userID: "u4"}, nil)
	if allowed || reason != "match_in_progress" {
		t.Fatalf("Mid-game attempt = (%t, %q), want rejection with match_in_progress", allowed, reason)
	}

	_, allowed, _ = mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, mockPresence{userID: "u2"}, nil)
	if !allowed {
		t.Fatal("Expected a seated player to be allowed back mid-game")
	}
}

func TestIntentsRejectedInLobby(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(6)
	state = joinUsers(t, mh, state, dispatcher, "u1", "u2")

	intents := []struct {
		name    string
		opCode  int64
		payload string
	}{
		{name: "Draw", opCode: OpDraw, payload: ""},
		{name: "Stop", opCode: OpStop, payload: ""},
		{name: "ChooseFreezeTarget", opCode: OpChooseFreezeTarget, payload: `{"target_id":"u2"}`},
		{name: "ChooseDrawThreeTarget", opCode: OpChooseDrawThreeTarget, payload: `{"target_id":"u2"}`},
		{name: "ResolveBust", opCode: OpResolveBust, payload: `{"accept":true}`},
		{name: "StartGameTooFew", opCode: OpStartGame, payload: ""},
	}

	for _, intent := range intents {
		intent := intent
		t.Run(intent.name, func(t *testing.T) {
			before := dispatcher.broadcastCount
			sendMessage(mh, state, dispatcher, "u1", intent.opCode, intent.payload)

			if dispatcher.lastOpCode != OpGameError {
				t.Fatalf("Last op = %d, want game_error %d", dispatcher.lastOpCode, OpGameError)
			}
			if dispatcher.broadcastCount != before+1 {
				t.Fatalf("Broadcasts = %d, want exactly one error message", dispatcher.broadcastCount-before)
			}
			if len(dispatcher.lastPresences) != 1 || dispatcher.lastPresences[0].GetUserId() != "u1" {
				t.Fatal("Expected the error to go only to the sender")
			}
		})
	}

	if snap := state.Engine.Snapshot(); snap.Phase != domain.PhaseLobby || len(snap.Players) != 2 {
		t.Fatalf("Lobby state changed: phase %s, %d players", snap.Phase, len(snap.Players))
	}

	before := dispatcher.broadcastCount
	sendMessage(mh, state, dispatcher, "u1", 99, "")
	if dispatcher.broadcastCount != before {
		t.Fatal("Unknown op code should not broadcast anything")
	}
}

func TestStartGameOverWire(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(6)
	state = joinUsers(t, mh, state, dispatcher, "u1", "u2", "u3")

	sendMessage(mh, state, dispatcher, "u2", OpStartGame, "")
	if dispatcher.lastOpCode != OpGameError {
		t.Fatal("Expected a non-host start to be rejected")
	}

	sendMessage(mh, state, dispatcher, "u1", OpStartGame, "")

	if !dispatcher.saw(OpGameStarted) || !dispatcher.saw(OpRoundStarted) {
		t.Fatal("Expected game_started and round_started broadcasts")
	}
	if !dispatcher.saw(OpCardDrawn) {
		t.Fatal("Expected the deal to broadcast card_drawn events")
	}
	if dispatcher.lastOpCode != OpStateSnapshot {
		t.Fatalf("Last broadcast op = %d, want snapshot %d", dispatcher.lastOpCode, OpStateSnapshot)
	}

	var label Label
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &label); err != nil {
		t.Fatalf("Failed to unmarshal label: %v", err)
	}
	if label.Open != 0 || label.Phase == string(domain.PhaseLobby) {
		t.Fatalf("Label = %+v, want a closed non-lobby listing", label)
	}

	sendMessage(mh, state, dispatcher, "u1", OpStartGame, "")
	if dispatcher.lastOpCode != OpGameError {
		t.Fatal("Expected a second start to be rejected")
	}
}

func TestTurnIntentsOverWire(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(6)
	state = joinUsers(t, mh, state, dispatcher, "u1", "u2", "u3")
	sendMessage(mh, state, dispatcher, "u1", OpStartGame, "")
	resolvePrompts(t, mh, state, dispatcher)

	snap := state.Engine.Snapshot()
	if snap.Phase != domain.PhasePlayerTurn {
		// The deal can end the round outright in rare deals; the turn flow
		// is covered by the engine tests either way.
		return
	}

	var current, other string
	for _, p := range snap.Players {
		if p.Seat == snap.TurnSeat {
			current = p.ID
		} else if other == "" {
			other = p.ID
		}
	}

	sendMessage(mh, state, dispatcher, current, OpResolveBust, `{"accept"`)
	if dispatcher.lastOpCode != OpGameError {
		t.Fatal("Expected a malformed payload to be rejected")
	}

	deckBefore := state.Engine.Snapshot().DeckCount
	sendMessage(mh, state, dispatcher, other, OpDraw, "")
	if dispatcher.lastOpCode != OpGameError {
		t.Fatal("Expected an out-of-turn draw to be rejected")
	}
	if got := state.Engine.Snapshot().DeckCount; got != deckBefore {
		t.Fatalf("Deck count changed %d -> %d on a rejected draw", deckBefore, got)
	}

	sendMessage(mh, state, dispatcher, current, OpStop, "")
	if !dispatcher.saw(OpPlayerStopped) {
		t.Fatal("Expected a player_stopped broadcast")
	}
	if dispatcher.lastOpCode != OpStateSnapshot {
		t.Fatal("Expected the accepted stop to close with a snapshot")
	}
}

func TestMatchLeaveInLobbyFreesSeat(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(3)
	state = joinUsers(t, mh, state, dispatcher, "u1", "u2", "u3")

	next := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{mockPresence{userID: "u2"}})
	state, ok := next.(*MatchState)
	if !ok {
		t.Fatalf("MatchLeave returned %T, want *MatchState", next)
	}

	if !dispatcher.saw(OpPlayerLeft) {
		t.Fatal("Expected a player_left broadcast")
	}
	snap := state.Engine.Snapshot()
	if len(snap.Players) != 2 {
		t.Fatalf("Seated %d players after leave, want 2", len(snap.Players))
	}

	var label Label
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &label); err != nil {
		t.Fatalf("Failed to unmarshal label: %v", err)
	}
	if label.Open != 1 {
		t.Fatalf("Label.Open = %d, want 1 after the seat freed", label.Open)
	}
}

func TestMatchLeaveMidGameDisconnects(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(6)
	state = joinUsers(t, mh, state, dispatcher, "u1", "u2", "u3")
	sendMessage(mh, state, dispatcher, "u1", OpStartGame, "")

	next := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{mockPresence{userID: "u2"}})
	state, ok := next.(*MatchState)
	if !ok {
		t.Fatalf("MatchLeave returned %T, want *MatchState", next)
	}

	if !dispatcher.saw(OpPlayerDisconnected) {
		t.Fatal("Expected a player_disconnected broadcast")
	}
	for _, p := range state.Engine.Snapshot().Players {
		if p.ID == "u2" && p.Connected {
			t.Fatal("Expected u2 to be marked disconnected")
		}
	}

	state = joinUsers(t, mh, state, dispatcher, "u2")
	if !dispatcher.saw(OpPlayerReconnected) {
		t.Fatal("Expected a player_reconnected broadcast")
	}
	for _, p := range state.Engine.Snapshot().Players {
		if p.ID == "u2" && !p.Connected {
			t.Fatal("Expected u2 to be reconnected")
		}
	}
}

func TestMatchLeaveLastPresenceTerminates(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(6)
	state = joinUsers(t, mh, state, dispatcher, "u1")

	next := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{mockPresence{userID: "u1"}})
	if next != nil {
		t.Fatalf("MatchLeave returned %v, want nil to terminate the empty match", next)
	}
}

func TestHookQueueDrainsOnLoop(t *testing.T) {
	mh := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(6)
	state = joinUsers(t, mh, state, dispatcher, "u1")

	state.enqueueHookEvents([]app.Event{{
		Kind:    app.EventRoundStarted,
		Payload: app.RoundStartedPayload{Round: 2, DealerSeat: 1},
	}})

	labelsBefore := dispatcher.labelUpdates
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, nil)

	if !dispatcher.saw(OpRoundStarted) {
		t.Fatal("Expected the queued round_started to broadcast")
	}
	if dispatcher.labelUpdates != labelsBefore+1 {
		t.Fatal("Expected a label refresh when the queued round starts")
	}
	if dispatcher.lastOpCode != OpStateSnapshot {
		t.Fatal("Expected the drained queue to close with a snapshot")
	}

	before := dispatcher.broadcastCount
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, nil)
	if dispatcher.broadcastCount != before {
		t.Fatal("Expected an empty queue to broadcast nothing")
	}
}

func TestConvertEventCoversAllKinds(t *testing.T) {
	card := domain.NumberCard(1, 7)
	tests := []struct {
		kind    app.EventKind
		payload any
		want    int64
	}{
		{app.EventPlayerJoined, app.PlayerJoinedPayload{PlayerID: "u1"}, OpPlayerJoined},
		{app.EventPlayerLeft, app.PlayerLeftPayload{PlayerID: "u1"}, OpPlayerLeft},
		{app.EventPlayerDisconnected, app.PlayerDisconnectedPayload{PlayerID: "u1"}, OpPlayerDisconnected},
		{app.EventPlayerReconnected, app.PlayerReconnectedPayload{PlayerID: "u1"}, OpPlayerReconnected},
		{app.EventGameStarted, app.GameStartedPayload{DealerSeat: 1}, OpGameStarted},
		{app.EventRoundStarted, app.RoundStartedPayload{Round: 1}, OpRoundStarted},
		{app.EventCardDrawn, app.CardDrawnPayload{PlayerID: "u1", Card: card, Source: app.DrawSourceTurn}, OpCardDrawn},
		{app.EventPlayerStopped, app.PlayerStoppedPayload{PlayerID: "u1"}, OpPlayerStopped},
		{app.EventPlayerBusted, app.PlayerBustedPayload{PlayerID: "u1", Card: card}, OpPlayerBusted},
		{app.EventPlayerFrozen, app.PlayerFrozenPayload{PlayerID: "u1", ByID: "u2"}, OpPlayerFrozen},
		{app.EventInsurancePrompt, app.InsurancePromptPayload{PlayerID: "u1", Card: card}, OpInsurancePrompt},
		{app.EventInsuranceResolved, app.InsuranceResolvedPayload{PlayerID: "u1", Accepted: true}, OpInsuranceResolved},
		{app.EventInsurancePassed, app.InsurancePassedPayload{FromID: "u1", ToID: "u2"}, OpInsurancePassed},
		{app.EventFreezePrompt, app.FreezePromptPayload{PlayerID: "u1", Eligible: []string{"u2"}}, OpFreezePrompt},
		{app.EventFreezeDiscarded, app.FreezeDiscardedPayload{TargetID: "u1", Card: card}, OpFreezeDiscarded},
		{app.EventDrawThreePrompt, app.DrawThreePromptPayload{PlayerID: "u1", Eligible: []string{"u2"}}, OpDrawThreePrompt},
		{app.EventDrawThreeStarted, app.DrawThreeStartedPayload{TargetID: "u1", Remaining: 3}, OpDrawThreeStarted},
		{app.EventTurnChanged, app.TurnChangedPayload{Seat: 1, PlayerID: "u1"}, OpTurnChanged},
		{app.EventRoundEnded, app.RoundEndedPayload{Round: 1}, OpRoundEnded},
		{app.EventGameEnded, app.GameEndedPayload{WinnerID: "u1"}, OpGameEnded},
	}

	for _, test := range tests {
		test := test
		t.Run(string(test.kind), func(t *testing.T) {
			op, payload, ok := convertEvent(app.Event{Kind: test.kind, Payload: test.payload})
			if !ok {
				t.Fatalf("convertEvent(%q) found no mapping", test.kind)
			}
			if op != test.want {
				t.Fatalf("convertEvent(%q) op = %d, want %d", test.kind, op, test.want)
			}
			if _, err := json.Marshal(payload); err != nil {
				t.Fatalf("Failed to marshal wire payload: %v", err)
			}
		})
	}

	if _, _, ok := convertEvent(app.Event{Kind: "unheard_of"}); ok {
		t.Fatal("convertEvent accepted an unknown kind")
	}
}

func TestLabelMarshal(t *testing.T) {
	tests := []struct {
		name     string
		label    Label
		expected string
	}{
		{
			name:     "OpenLobby",
			label:    Label{Open: 3, Game: "flip7", Phase: "lobby"},
			expected: `{"open":3,"game":"flip7","phase":"lobby"}`,
		},
		{
			name:     "ClosedInPlay",
			label:    Label{Open: 0, Game: "flip7", Phase: "player_turn"},
			expected: `{"open":0,"game":"flip7","phase":"player_turn"}`,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			payload, err := json.Marshal(test.label)
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			if string(payload) != test.expected {
				t.Errorf("Got %s, want %s", payload, test.expected)
			}
		})
	}
}

func TestSnapshotDTOMarshalShape(t *testing.T) {
	snap := app.Snapshot{
		GameID:     "g1",
		Phase:      domain.PhasePlayerTurn,
		Round:      2,
		DealerSeat: 0,
		TurnSeat:   1,
		DeckCount:  40,
		Players: []app.PlayerSnapshot{{
			ID:     "u1",
			Name:   "u1",
			Seat:   0,
			Status: domain.StatusActive,
			Hand:   []domain.Card{domain.NumberCard(1, 7)},
		}},
		Settings: domain.Settings{WinThreshold: 200, MinPlayers: 3, MaxPlayers: 6, TurnSeconds: 15},
	}

	data, err := json.Marshal(toSnapshotDTO(snap))
	if err != nil {
		t.Fatalf("Failed to marshal snapshot DTO: %v", err)
	}
	got := string(data)

	for _, key := range []string{`"game_id":"g1"`, `"phase":"player_turn"`, `"win_threshold":200`, `"turn_seconds":15`, `"hand":[{"id":1,"kind":"number","value":7}]`} {
		if !strings.Contains(got, key) {
			t.Fatalf("Snapshot JSON missing %s: %s", key, got)
		}
	}
	for _, key := range []string{`"pending"`, `"draw_three"`, `"winner_id"`} {
		if strings.Contains(got, key) {
			t.Fatalf("Snapshot JSON should omit %s when unset: %s", key, got)
		}
	}

	snap.Pending = &app.PendingSnapshot{Kind: domain.PendingBustChoice, PlayerID: "u1", Card: domain.NumberCard(2, 7)}
	snap.DrawThree = &app.DrawThreeSnapshot{TargetID: "u1", Remaining: 2, SetAside: 1}
	data, err = json.Marshal(toSnapshotDTO(snap))
	if err != nil {
		t.Fatalf("Failed to marshal snapshot DTO: %v", err)
	}
	got = string(data)
	if !strings.Contains(got, `"kind":"bust_choice"`) || !strings.Contains(got, `"remaining":2`) {
		t.Fatalf("Snapshot JSON missing pending interaction detail: %s", got)
	}
}
