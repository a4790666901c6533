package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/gabrielgmendonca/flip7/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// Find any match of our game that still has an open lobby seat.
	query := "+label.open:>0 label.game:" + GameLabelName + " label.phase:lobby"

	limit := 10
	authoritative := true

	maxPlayers := config.DefaultGameConfig().MaxPlayers
	if cfg := config.GetGameConfig(); cfg != nil {
		maxPlayers = cfg.MaxPlayers
	}

	minSize := 1
	maxSize := maxPlayers - 1 // keep a seat free for the caller

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create new match; seating happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameFlip7, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
