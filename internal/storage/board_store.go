package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/types"
)

// BoardStore loads board documents from a directory of JSON files, one file
// per board, selected by name. Malformed documents fail fast at load time
// instead of leaking undefined values into the pipeline.
type BoardStore struct {
	dir string
}

// NewBoardStore creates a board store over a directory.
func NewBoardStore(dir string) *BoardStore {
	return &BoardStore{dir: dir}
}

// boardDocument is the on-disk board shape. Dates are strings because board
// files are hand-edited and use either full timestamps or bare dates.
type boardDocument struct {
	Name          string                     `json:"name"`
	AllowPractice bool                       `json:"allow_practice"`
	AllowCombine  bool                       `json:"allow_combine"`
	AllowXFA      bool                       `json:"allow_xfa"`
	AllowMultiple bool                       `json:"allow_multiple"`
	StartDate     string                     `json:"start_date"`
	EndDate       string                     `json:"end_date"`
	Shares        map[string][]shareDocument `json:"shares"`
}

type shareDocument struct {
	AccountID   int64  `json:"account_id"`
	Platform    string `json:"platform,omitempty"`
	AccountType string `json:"account_type,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// Load reads and validates the named board.
func (s *BoardStore) Load(name string) (*models.Board, error) {
	if name == "" || strings.ContainsAny(name, "/\\.") {
		return nil, &types.ServiceError{
			Code:    types.CodeInvalidInput,
			Message: fmt.Sprintf("invalid board name: %q", name),
		}
	}

	path := filepath.Join(s.dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &types.ServiceError{
				Code:    types.CodeBoardNotFound,
				Message: fmt.Sprintf("board not found: %s", name),
			}
		}
		return nil, fmt.Errorf("failed to read board %s: %w", name, err)
	}

	var doc boardDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &types.ServiceError{
			Code:    types.CodeInvalidBoard,
			Message: fmt.Sprintf("board %s is not valid JSON: %v", name, err),
		}
	}

	board, err := doc.toBoard()
	if err != nil {
		return nil, &types.ServiceError{
			Code:    types.CodeInvalidBoard,
			Message: fmt.Sprintf("board %s: %v", name, err),
		}
	}

	return board, nil
}

func (d *boardDocument) toBoard() (*models.Board, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if len(d.Shares) == 0 {
		return nil, fmt.Errorf("board has no shares")
	}

	start, err := parseBoardDate(d.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := parseBoardDate(d.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %w", err)
	}
	if start.After(end) {
		return nil, fmt.Errorf("start_date %s is after end_date %s", d.StartDate, d.EndDate)
	}

	board := &models.Board{
		Name:          d.Name,
		AllowPractice: d.AllowPractice,
		AllowCombine:  d.AllowCombine,
		AllowXFA:      d.AllowXFA,
		AllowMultiple: d.AllowMultiple,
		StartDate:     start,
		EndDate:       end,
		Shares:        make(map[string][]models.Share, len(d.Shares)),
	}

	for user, shareDocs := range d.Shares {
		if user == "" {
			return nil, fmt.Errorf("share entry with empty user")
		}
		shares := make([]models.Share, 0, len(shareDocs))
		for i, sd := range shareDocs {
			if sd.AccountID == 0 {
				return nil, fmt.Errorf("user %s share %d has no account_id", user, i)
			}
			share := models.Share{
				AccountID:   sd.AccountID,
				Platform:    sd.Platform,
				AccountType: sd.AccountType,
			}
			if sd.StartDate != "" {
				t, err := parseBoardDate(sd.StartDate)
				if err != nil {
					return nil, fmt.Errorf("user %s share %d: invalid start_date: %w", user, i, err)
				}
				share.StartDate = &t
			}
			if sd.EndDate != "" {
				t, err := parseBoardDate(sd.EndDate)
				if err != nil {
					return nil, fmt.Errorf("user %s share %d: invalid end_date: %w", user, i, err)
				}
				share.EndDate = &t
			}
			shares = append(shares, share)
		}
		board.Shares[user] = shares
	}

	return board, nil
}

// parseBoardDate accepts full RFC3339 timestamps and bare dates.
func parseBoardDate(value string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
