package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/pkg/types"
)

type StatisticType string

const (
	// Daily submission counts and amounts, labelled by transaction type
	StatisticTypeDailySubmissionCount StatisticType = "daily_submission_count"
	StatisticTypeDailyAmount          StatisticType = "daily_amount"

	// Review backlog
	StatisticTypePendingCount StatisticType = "pending_count"

	// Membership related
	StatisticTypeDailyMembershipGrantCount StatisticType = "daily_membership_grant_count"
	StatisticTypeActiveMembershipCount     StatisticType = "active_membership_count"
)

// FilterFields are the payment_transaction columns statistic filters may use.
// Membership statistics ignore filters.
var FilterFields = []string{"transaction_type", "status", "item_id", "created_at"}

type DataItem struct {
	ID StatisticType `json:"id"`
}

type Request struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*DataItem           `json:"data_items"`
}

type ResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type Response struct {
	DataItems map[StatisticType][]ResponseDataItem `json:"data_items"`
}

// Service computes review-desk statistics.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) where(req *Request) clause.Where {
	return clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}}
}

func (s *Service) getDailySubmissionCount(ctx context.Context, req *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, transaction_type as label, count(*) as value").
		Where(s.where(req)).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("transaction_type").
		Order("date DESC")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyAmount(ctx context.Context, req *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, transaction_type as label, COALESCE(sum(CAST(amount AS BIGINT)), 0) as value").
		Where(s.where(req)).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("transaction_type").
		Order("date DESC")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getPendingCount(ctx context.Context, req *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Select("transaction_type as label, count(*) as value").
		Where(s.where(req)).
		Where("status = ?", types.TransactionStatusPending).
		Group("transaction_type")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyMembershipGrantCount(ctx context.Context, _ *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.UserMembership{}).
		Select("TO_CHAR(updated_at, 'YYYY-MM-DD') as date, membership as label, count(*) as value").
		Where("membership <> ?", types.MembershipNone).
		Group("TO_CHAR(updated_at, 'YYYY-MM-DD')").
		Group("membership").
		Order("date DESC")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveMembershipCount(ctx context.Context, _ *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.UserMembership{}).
		Select("membership as label, count(*) as value").
		Where("membership <> '' AND membership <> ?", types.MembershipNone).
		Group("membership")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) get(ctx context.Context, req *Request, item *DataItem) ([]ResponseDataItem, error) {
	switch item.ID {
	case StatisticTypeDailySubmissionCount:
		return s.getDailySubmissionCount(ctx, req)
	case StatisticTypeDailyAmount:
		return s.getDailyAmount(ctx, req)
	case StatisticTypePendingCount:
		return s.getPendingCount(ctx, req)
	case StatisticTypeDailyMembershipGrantCount:
		return s.getDailyMembershipGrantCount(ctx, req)
	case StatisticTypeActiveMembershipCount:
		return s.getActiveMembershipCount(ctx, req)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", item.ID)
	}
}

// Validate rejects unknown data items and filter fields before any query runs.
func Validate(req *Request) error {
	if req == nil || len(req.DataItems) == 0 {
		return fmt.Errorf("data_items is required")
	}
	for _, it := range req.DataItems {
		if it == nil {
			return fmt.Errorf("nil data item")
		}
		switch it.ID {
		case StatisticTypeDailySubmissionCount, StatisticTypeDailyAmount, StatisticTypePendingCount,
			StatisticTypeDailyMembershipGrantCount, StatisticTypeActiveMembershipCount:
		default:
			return fmt.Errorf("invalid data item id: %s", it.ID)
		}
	}
	return types.CheckFields(req.Filters, FilterFields...)
}

// GetStatistic computes every requested data item concurrently.
func (s *Service) GetStatistic(ctx context.Context, req *Request) (*Response, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	results := make(map[StatisticType][]ResponseDataItem, len(req.DataItems))
	for _, item := range lo.UniqBy(req.DataItems, func(it *DataItem) StatisticType { return it.ID }) {
		wg.Add(1)
		go func(di *DataItem) {
			defer wg.Done()
			res, err := s.get(ctx, req, di)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", di.ID, err)
				}
				return
			}
			results[di.ID] = res
		}(item)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return &Response{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
