package interfaces

import "github.com/door66/lost-souls/internal/types"

// HuntManager defines the interface for hunt operations
type HuntManager interface {
	RegisterPlayer(name string) (*types.PlayerState, error)
	GetPlayer(playerID string) (*types.PlayerState, error)
	SelectCharacter(playerID, characterID string) error
	ScanClue(playerID, clueID string) (*types.ScanResult, error)
	UnlockClue(playerID, clueID, code string) (*types.ScanResult, error)
	Progress(playerID string) ([]types.QuestProgress, error)
	ResetPlayer(playerID string) error
}
