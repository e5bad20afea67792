package service

import (
	"github.com/trade-board/internal/models"
)

// BoardLoader loads board documents by name.
type BoardLoader interface {
	Load(name string) (*models.Board, error)
}

// BoardService resolves board names and loads board documents.
type BoardService struct {
	store       BoardLoader
	defaultName string
}

// NewBoardService creates a board service. defaultName is served when a
// request carries no board name.
func NewBoardService(store BoardLoader, defaultName string) *BoardService {
	if defaultName == "" {
		defaultName = "default"
	}
	return &BoardService{store: store, defaultName: defaultName}
}

// Get loads the named board, falling back to the default board for an empty
// name. Boards are re-read from disk on every call so edits to a board file
// take effect on the next refresh without a restart.
func (s *BoardService) Get(name string) (*models.Board, error) {
	if name == "" {
		name = s.defaultName
	}
	return s.store.Load(name)
}

// DefaultName returns the board served when no name is given.
func (s *BoardService) DefaultName() string {
	return s.defaultName
}
