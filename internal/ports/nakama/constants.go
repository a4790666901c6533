package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameFlip7 is the authoritative match handler name registered with Nakama.
	MatchNameFlip7 = "flip7_match"

	// GameLabelName identifies this game in match labels for discovery queries.
	GameLabelName = "flip7"

	// GameConfigPath is resolved relative to the Nakama data directory.
	GameConfigPath = "data/game_config.json"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame             int64 = 1
	OpDraw                  int64 = 2
	OpStop                  int64 = 3
	OpChooseFreezeTarget    int64 = 4
	OpChooseDrawThreeTarget int64 = 5
	OpResolveBust           int64 = 6

	// Server -> Client events
	OpPlayerJoined       int64 = 101
	OpPlayerLeft         int64 = 102
	OpPlayerDisconnected int64 = 103
	OpPlayerReconnected  int64 = 104
	OpGameStarted        int64 = 105
	OpRoundStarted       int64 = 106
	OpCardDrawn          int64 = 107
	OpPlayerStopped      int64 = 108
	OpPlayerBusted       int64 = 109
	OpPlayerFrozen       int64 = 110
	OpInsurancePrompt    int64 = 111
	OpInsuranceResolved  int64 = 112
	OpInsurancePassed    int64 = 113
	OpFreezePrompt       int64 = 114
	OpFreezeDiscarded    int64 = 115
	OpDrawThreePrompt    int64 = 116
	OpDrawThreeStarted   int64 = 117
	OpTurnChanged        int64 = 118
	OpRoundEnded         int64 = 119
	OpGameEnded          int64 = 120
	OpStateSnapshot      int64 = 121
	OpGameError          int64 = 122
)
