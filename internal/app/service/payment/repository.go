package payment

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/pkg/types"
)

// Repository stores submitted transactions and the membership grant that
// goes with them.
type Repository interface {
	// CreateSubmission writes rec and, when grant is non-nil, upserts grant
	// in the same database transaction.
	CreateSubmission(ctx context.Context, rec *models.PaymentTransaction, grant *models.UserMembership) error
	ListByUser(ctx context.Context, userID string, from, size int) ([]*models.PaymentTransaction, int64, error)
	Scan(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error)
}

// ScanFilterFields are the columns the admin listing may filter on.
var ScanFilterFields = []string{"user_id", "transaction_id", "transaction_type", "status", "item_id", "timestamp", "created_at"}

var scanSortFields = map[string]bool{"timestamp": true, "created_at": true, "amount": true}

type ScanTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanTransactionsResponse struct {
	Items []*models.PaymentTransaction `json:"items"`
	Total int64                        `json:"total"`
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateSubmission(ctx context.Context, rec *models.PaymentTransaction, grant *models.UserMembership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create payment transaction: %w", err)
		}
		if grant == nil {
			return nil
		}
		// last write wins, same as a merge-set of the membership field
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"membership", "source_transaction_id", "updated_at"}),
		}).Create(grant).Error
		if err != nil {
			return fmt.Errorf("failed to upsert user membership: %w", err)
		}
		return nil
	})
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string, from, size int) ([]*models.PaymentTransaction, int64, error) {
	from, size = normalizePage(from, size)
	q := r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	var rows []*models.PaymentTransaction
	if err := q.Order("created_at DESC").Offset(from).Limit(size).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rows, total, nil
}

// Scan implements paginated admin listing. Filter fields must already be
// checked against ScanFilterFields.
func (r *GormRepository) Scan(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	from, size := normalizePage(req.From, req.Size)

	tx := r.db.WithContext(ctx).Model(&models.PaymentTransaction{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	sortBy := "created_at"
	if scanSortFields[req.SortBy] {
		sortBy = req.SortBy
	}
	q := tx.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}}).
		Offset(from).Limit(size)

	var rows []*models.PaymentTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}

func normalizePage(from, size int) (int, int) {
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	if from < 0 {
		from = 0
	}
	return from, size
}
