package portfolio

import (
	"context"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// ListMemos returns the user's memos, newest first
func (s *Service) ListMemos(userID string) ([]*models.Memo, error) {
	memos, err := s.repo.ListMemos(userID)
	if err != nil {
		return nil, storeErr("list memos", err)
	}
	return memos, nil
}

// AddMemo stores a new memo
func (s *Service) AddMemo(ctx context.Context, userID string, in MemoInput) (*models.Memo, error) {
	now := s.now()
	m, err := ParseMemo(in, now)
	if err != nil {
		return nil, err
	}
	m.ID = s.newID()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := s.repo.PutMemo(userID, &m); err != nil {
		return nil, storeErr("save memo", err)
	}
	return &m, nil
}

// UpdateMemo replaces a memo's date, title and content
func (s *Service) UpdateMemo(ctx context.Context, userID, id string, in MemoInput) (*models.Memo, error) {
	existing, err := s.repo.GetMemo(userID, id)
	if err != nil {
		return nil, storeErr("get memo", err)
	}
	now := s.now()
	m, err := ParseMemo(in, existing.Date)
	if err != nil {
		return nil, err
	}
	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = now
	if err := s.repo.PutMemo(userID, &m); err != nil {
		return nil, storeErr("save memo", err)
	}
	return &m, nil
}

// DeleteMemo removes a memo
func (s *Service) DeleteMemo(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetMemo(userID, id); err != nil {
		return storeErr("get memo", err)
	}
	if err := s.repo.DeleteMemo(userID, id); err != nil {
		return storeErr("delete memo", err)
	}
	return nil
}
