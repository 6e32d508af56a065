package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"mail_admin/internal/model"
	"mail_admin/internal/repository"
)

var ErrInvalidListingType = errors.New("type must be one of: user, installer, history")

// maxListingPage is the largest page whose row offset fits in an int
const maxListingPage = math.MaxInt/model.PageSize + 1

// ListingService provides paged read access to users, installers and send history
type ListingService interface {
	List(ctx context.Context, q model.ListingQuery) (*model.ListingPage, error)
	ExportHistoryCSV(ctx context.Context, filters model.HistoryFilters) (*bytes.Buffer, error)
}

type listingService struct {
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
}

// NewListingService creates a new ListingService
func NewListingService(userRepo repository.UserRepository, historyRepo repository.HistoryRepository) ListingService {
	return &listingService{userRepo: userRepo, historyRepo: historyRepo}
}

// List returns one fixed-size page. Pages past the end come back empty, not as an error.
func (s *listingService) List(ctx context.Context, q model.ListingQuery) (*model.ListingPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	// pages whose offset would overflow are past any real table; only the count is queried
	beyondEnd := q.Page > maxListingPage
	offset := 0
	if !beyondEnd {
		offset = (q.Page - 1) * model.PageSize
	}

	var (
		items any
		total int64
		err   error
	)

	switch q.Type {
	case model.ListingHistory:
		filters := model.HistoryFilters{Search: q.Search, RoleFilter: q.RoleFilter}
		if beyondEnd {
			items = []model.EmailHistory{}
		} else if items, err = s.historyRepo.List(ctx, filters, model.PageSize, offset); err != nil {
			return nil, fmt.Errorf("failed to list email history: %w", err)
		}
		if total, err = s.historyRepo.Count(ctx, filters); err != nil {
			return nil, fmt.Errorf("failed to count email history: %w", err)
		}
	case model.ListingUsers, model.ListingInstallers:
		if beyondEnd {
			items = []model.User{}
		} else if items, err = s.userRepo.ListByRole(ctx, q.Type, q.Search, model.PageSize, offset); err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		if total, err = s.userRepo.CountByRole(ctx, q.Type, q.Search); err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
	default:
		return nil, ErrInvalidListingType
	}

	return &model.ListingPage{
		Items: items,
		Meta: model.ListingMeta{
			TotalCount:  total,
			TotalPages:  (total + model.PageSize - 1) / model.PageSize,
			CurrentPage: q.Page,
		},
	}, nil
}

// ExportHistoryCSV writes every history row matching filters as CSV
func (s *listingService) ExportHistoryCSV(ctx context.Context, filters model.HistoryFilters) (*bytes.Buffer, error) {
	rows, err := s.historyRepo.FindAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch email history for CSV export: %w", err)
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	header := []string{"ID", "RecipientEmail", "RecipientName", "TemplateName", "Status", "Role", "IsBulk", "SentAt", "AdminID"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, h := range rows {
		var adminID string
		if h.AdminID != nil {
			adminID = strconv.FormatInt(*h.AdminID, 10)
		}
		row := []string{
			strconv.FormatInt(h.ID, 10),
			h.RecipientEmail,
			h.RecipientName,
			h.TemplateName,
			h.Status,
			h.Role,
			strconv.FormatBool(h.IsBulk),
			h.SentAt.Format(time.RFC3339),
			adminID,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}

	return buffer, nil
}
