package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/swytch/paydesk/internal/app/service/catalog"
	"github.com/swytch/paydesk/internal/app/service/screenshot"
	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/internal/platform/broker"
	"github.com/swytch/paydesk/internal/platform/lock"
	"github.com/swytch/paydesk/internal/platform/objectstore"
	"github.com/swytch/paydesk/pkg/auth"
	"github.com/swytch/paydesk/pkg/config"
	"github.com/swytch/paydesk/pkg/logctx"
	"github.com/swytch/paydesk/pkg/metrics"
	"github.com/swytch/paydesk/pkg/tool"
	"github.com/swytch/paydesk/pkg/types"
	"github.com/swytch/paydesk/pkg/upi"
)

// SubmittedRoutingKey is the broker routing key of the review-queue event.
const SubmittedRoutingKey = "payment.submitted"

// ScreenshotPrefix is the object-store folder for payment proofs.
const ScreenshotPrefix = "payment_screenshots"

// User-facing texts.
const (
	msgLogin             = "Please log in to continue"
	msgInvalidAmount     = "Please enter a valid amount"
	msgInvalidType       = "Invalid transaction type"
	msgScreenshot        = "Please upload a UPI payment screenshot"
	msgInvalidTier       = "Invalid membership tier"
	msgAmountMismatch    = "Amount does not match the selected membership price"
	msgActiveMembership  = "You already have an active membership"
	msgContentID         = "Content ID is required"
	msgNotConfigured     = "UPI ID is not configured. Please contact support."
	msgInProgress        = "A payment submission is already in progress"
	msgMembershipCheck   = "Could not verify your membership. Please try again."
	msgUploadFailed      = "Failed to upload payment screenshot. Please try again."
	msgUploadTimeout     = "Screenshot upload timed out. Please try again."
	msgPersistFailed     = "Failed to submit payment. Please try again."
	msgPersistTimeout    = "Payment submission timed out. Please try again."
	msgDuplicate         = "This payment was already submitted. Please try again in a moment."
	msgSubmittedTemplate = "Payment submitted for admin verification. Transaction ID: %s"
)

// MembershipGuard answers whether a user already holds a tier.
type MembershipGuard interface {
	HasActiveMembership(ctx context.Context, userID string) (bool, error)
}

// AuditLog receives one entry when a run starts and one when it ends.
type AuditLog interface {
	Save(ctx context.Context, entry *models.PaymentSubmissionLog)
}

// Options are the pipeline settings taken from config.
type Options struct {
	PayeeHandle string
	PayeeName   string
	Currency    string
	StepTimeout time.Duration
	LockTTL     time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PayeeHandle: cfg.UPI.PayeeHandle,
		PayeeName:   cfg.UPI.PayeeName,
		Currency:    cfg.UPI.Currency,
		StepTimeout: cfg.Payment.StepTimeout,
		LockTTL:     cfg.Payment.LockTTL,
	}
}

// SubmitRequest is one click of the submit button.
type SubmitRequest struct {
	Principal       *auth.Principal
	Amount          int64
	ItemID          string
	TransactionType types.TransactionType
	// Screenshot is cleared when Submit returns, whatever the outcome.
	Screenshot *screenshot.Slot
	// OnSuccess is called exactly once after the record is stored.
	OnSuccess func(itemID string)
	// Observer sees every state transition in order.
	Observer func(State)
}

// Result is the caller-visible outcome of a run.
type Result struct {
	State         State                   `json:"state"`
	TransactionID string                  `json:"transaction_id,omitempty"`
	Status        types.TransactionStatus `json:"status,omitempty"`
	PaymentURI    string                  `json:"payment_uri,omitempty"`
	ScreenshotURL string                  `json:"screenshot_url,omitempty"`
	ItemID        string                  `json:"item_id,omitempty"`
	Message       string                  `json:"message"`
}

// SubmittedEvent is published for the review desk after a record is stored.
type SubmittedEvent struct {
	TransactionID   string                `json:"transaction_id"`
	UserID          string                `json:"user_id"`
	Amount          int64                 `json:"amount"`
	TransactionType types.TransactionType `json:"transaction_type"`
	ItemID          string                `json:"item_id,omitempty"`
	ScreenshotURL   string                `json:"screenshot_url,omitempty"`
	SubmittedAt     time.Time             `json:"submitted_at"`
}

type Service struct {
	opts      Options
	catalog   *catalog.Catalog
	guard     MembershipGuard
	repo      Repository
	store     objectstore.Store
	publisher broker.Publisher
	locker    lock.Locker
	audit     AuditLog
	clock     tool.Clock
	metrics   *metrics.Payment
	log       *zap.SugaredLogger
}

type Deps struct {
	Options   Options
	Catalog   *catalog.Catalog
	Guard     MembershipGuard
	Repo      Repository
	Store     objectstore.Store
	Publisher broker.Publisher
	Locker    lock.Locker
	Audit     AuditLog
	Clock     tool.Clock
	Metrics   *metrics.Payment
	Log       *zap.SugaredLogger
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = tool.SystemClock{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Options.StepTimeout <= 0 {
		d.Options.StepTimeout = 30 * time.Second
	}
	if d.Options.LockTTL <= 0 {
		d.Options.LockTTL = 2 * time.Minute
	}
	return &Service{
		opts:      d.Options,
		catalog:   d.Catalog,
		guard:     d.Guard,
		repo:      d.Repo,
		store:     d.Store,
		publisher: d.Publisher,
		locker:    d.Locker,
		audit:     d.Audit,
		clock:     d.Clock,
		metrics:   d.Metrics,
		log:       d.Log,
	}
}

// run is the mutable state of one Submit call.
type run struct {
	req        *SubmitRequest
	result     *Result
	userID     string
	tier       *catalog.Tier
	file       *screenshot.File
	paymentURI string
}

func (r *run) enter(s State) {
	r.result.State = s
	if r.req.Observer != nil {
		r.req.Observer(s)
	}
}

// Submit validates a payment submission, uploads its screenshot, and stores
// the pending record. The returned Result is never nil; on failure it holds
// the terminal state and the payer-facing message, and the error carries the
// kind.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (res *Result, retErr error) {
	if req == nil {
		req = &SubmitRequest{}
	}
	r := &run{req: req, result: &Result{State: StateIdle}}
	defer req.Screenshot.Clear()

	lg := logctx.FromCtx(ctx, s.log).With("transaction_type", req.TransactionType)
	defer func() {
		if retErr != nil {
			r.result.Message = UserMessage(retErr)
			if terminalState(retErr) == StateFailed {
				r.enter(StateFailed)
				lg.Errorw("payment_submission_failed", "err", retErr, "transaction_id", r.result.TransactionID)
			} else {
				r.enter(StateRejected)
				lg.Infow("payment_submission_rejected", "reason", r.result.Message)
			}
			// nothing was stored under this id
			r.result.TransactionID = ""
		}
		s.metrics.ObserveSubmission(string(req.TransactionType), string(r.result.State))
		res = r.result
	}()

	r.enter(StateValidating)
	if req.Principal == nil || req.Principal.UserID == "" {
		return nil, newError(ErrNotAuthenticated, msgLogin, nil)
	}
	r.userID = req.Principal.UserID
	lg = lg.With("user_id", r.userID)

	var release func()
	err := s.step(ctx, "lock", func(ctx context.Context) error {
		var err error
		release, err = s.locker.TryLock(ctx, r.userID, s.opts.LockTTL)
		return err
	})
	if err != nil {
		if release != nil {
			release()
		}
		if errors.Is(err, lock.ErrHeld) {
			return nil, newError(ErrSubmissionInProgress, msgInProgress, err)
		}
		return nil, newError(ErrPersistence, msgPersistFailed, fmt.Errorf("acquire submission lock: %w", err))
	}
	defer release()

	// One reading of the clock names both the record and the upload.
	submittedAt := s.clock.Now()
	r.result.TransactionID = fmt.Sprintf("%s_%d", r.userID, submittedAt.UnixMilli())

	s.saveAudit(ctx, r, models.PaymentSubmissionLogStatusReceived, nil)
	defer func() {
		status := models.PaymentSubmissionLogStatusHandled
		if retErr != nil {
			status = models.PaymentSubmissionLogStatusHandleFailed
			// record the state the run ends in, not where it stopped
			r.result.State = terminalState(retErr)
		}
		s.saveAudit(ctx, r, status, retErr)
	}()

	if err := s.validate(ctx, r); err != nil {
		return nil, err
	}

	// Once the network steps begin the run is not cancellable; each step
	// is bounded by its own timeout instead.
	netCtx := context.WithoutCancel(ctx)

	var screenshotURL, screenshotKey string
	if r.file != nil {
		r.enter(StateUploading)
		screenshotKey = fmt.Sprintf("%s/%s_%d.%s", ScreenshotPrefix, r.userID, submittedAt.UnixMilli(), r.file.Ext())
		screenshotURL, err = s.upload(netCtx, screenshotKey, r.file)
		if err != nil {
			return nil, err
		}
	}

	r.enter(StatePersisting)
	rec := &models.PaymentTransaction{
		ID:              tool.GenerateUUIDV7(),
		TransactionID:   r.result.TransactionID,
		UserID:          r.userID,
		Amount:          strconv.FormatInt(req.Amount, 10),
		TransactionType: req.TransactionType,
		Status:          types.TransactionStatusPending,
		Extra: datatypes.NewJSONType(&models.PaymentTransactionExtra{
			PaymentURI:  r.paymentURI,
			PayeeHandle: s.opts.PayeeHandle,
			DisplayName: req.Principal.DisplayName,
			TraceID:     logctx.TraceID(ctx),
		}),
	}
	if req.ItemID != "" {
		rec.ItemID = lo.ToPtr(req.ItemID)
	}
	if screenshotURL != "" {
		rec.ScreenshotURL = lo.ToPtr(screenshotURL)
		rec.ScreenshotKey = lo.ToPtr(screenshotKey)
	}
	var grant *models.UserMembership
	if req.TransactionType == types.TransactionTypeMembership {
		rec.Extra.Data().TierName = r.tier.Name
		grant = &models.UserMembership{
			UserID:              r.userID,
			Membership:          req.ItemID,
			SourceTransactionID: lo.ToPtr(r.result.TransactionID),
		}
	}
	if err := s.persist(netCtx, rec, grant); err != nil {
		return nil, err
	}

	r.result.Status = types.TransactionStatusPending
	r.result.PaymentURI = r.paymentURI
	r.result.ScreenshotURL = screenshotURL
	r.result.ItemID = req.ItemID
	r.result.Message = fmt.Sprintf(msgSubmittedTemplate, r.result.TransactionID)
	r.enter(StateSucceeded)

	s.publish(netCtx, lg, &SubmittedEvent{
		TransactionID:   r.result.TransactionID,
		UserID:          r.userID,
		Amount:          req.Amount,
		TransactionType: req.TransactionType,
		ItemID:          req.ItemID,
		ScreenshotURL:   screenshotURL,
		SubmittedAt:     submittedAt,
	})
	lg.Infow("payment_submission_succeeded", "transaction_id", r.result.TransactionID)

	if req.OnSuccess != nil {
		req.OnSuccess(req.ItemID)
	}
	return nil, nil
}

func terminalState(err error) State {
	if errors.Is(err, ErrUpload) || errors.Is(err, ErrPersistence) {
		return StateFailed
	}
	return StateRejected
}

// validate checks the request in order and stops at the first problem.
// It has no side effects besides the membership read.
func (s *Service) validate(ctx context.Context, r *run) error {
	req := r.req
	if req.Amount <= 0 {
		return newError(ErrValidation, msgInvalidAmount, nil)
	}
	if !req.TransactionType.Valid() {
		return newError(ErrValidation, msgInvalidType, nil)
	}

	if req.TransactionType.RequiresScreenshot() {
		r.file = req.Screenshot.File()
	}

	switch req.TransactionType {
	case types.TransactionTypeMembership:
		if r.file == nil {
			return newError(ErrValidation, msgScreenshot, nil)
		}
		tier, err := s.catalog.Lookup(req.ItemID)
		if err != nil {
			return newError(ErrValidation, msgInvalidTier, err)
		}
		if req.Amount != tier.Amount {
			return newError(ErrValidation, msgAmountMismatch, nil)
		}
		var active bool
		err = s.step(ctx, "membership_check", func(ctx context.Context) error {
			var err error
			active, err = s.guard.HasActiveMembership(ctx, r.userID)
			return err
		})
		if err != nil {
			return newError(ErrPersistence, msgMembershipCheck, err)
		}
		if active {
			return newError(ErrValidation, msgActiveMembership, nil)
		}
		r.tier = &tier
	case types.TransactionTypeContentPurchase:
		if req.ItemID == "" {
			return newError(ErrValidation, msgContentID, nil)
		}
		if r.file == nil {
			return newError(ErrValidation, msgScreenshot, nil)
		}
	case types.TransactionTypeWithdraw:
	}

	uri, err := upi.BuildIntent(upi.Intent{
		PayeeHandle:     s.opts.PayeeHandle,
		PayeeName:       s.opts.PayeeName,
		Amount:          req.Amount,
		Currency:        s.opts.Currency,
		TransactionType: string(req.TransactionType),
		ItemID:          req.ItemID,
	})
	if err != nil {
		if errors.Is(err, upi.ErrPayeeNotConfigured) {
			return newError(ErrConfiguration, msgNotConfigured, err)
		}
		return newError(ErrValidation, msgInvalidAmount, err)
	}
	r.paymentURI = uri
	return nil
}

func (s *Service) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	sctx, cancel := context.WithTimeout(ctx, s.opts.StepTimeout)
	defer cancel()
	start := time.Now()
	err := fn(sctx)
	if err == nil && sctx.Err() != nil {
		// the step ignored its context and returned after the deadline
		err = sctx.Err()
	}
	s.metrics.ObserveStep(name, start, err)
	return err
}

func (s *Service) upload(ctx context.Context, key string, f *screenshot.File) (string, error) {
	err := s.step(ctx, "upload", func(ctx context.Context) error {
		return s.store.Upload(ctx, key, f.ContentType, f.Data)
	})
	if err != nil {
		return "", uploadError(err)
	}
	var url string
	err = s.step(ctx, "download_url", func(ctx context.Context) error {
		var err error
		url, err = s.store.DownloadURL(ctx, key)
		return err
	})
	if err != nil {
		return "", uploadError(err)
	}
	return url, nil
}

func uploadError(err error) error {
	if isTimeout(err) {
		return newError(ErrUpload, msgUploadTimeout, err)
	}
	return newError(ErrUpload, msgUploadFailed, err)
}

func (s *Service) persist(ctx context.Context, rec *models.PaymentTransaction, grant *models.UserMembership) error {
	err := s.step(ctx, "persist", func(ctx context.Context) error {
		return s.repo.CreateSubmission(ctx, rec, grant)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return newError(ErrPersistence, msgDuplicate, err)
	case isTimeout(err):
		return newError(ErrPersistence, msgPersistTimeout, err)
	default:
		return newError(ErrPersistence, msgPersistFailed, err)
	}
}

// publish notifies the review queue. The record is already stored, so a
// broker failure is logged and does not fail the run.
func (s *Service) publish(ctx context.Context, lg *zap.SugaredLogger, ev *SubmittedEvent) {
	if s.publisher == nil {
		return
	}
	err := s.step(ctx, "publish", func(ctx context.Context) error {
		return s.publisher.Publish(ctx, SubmittedRoutingKey, ev)
	})
	if err != nil {
		lg.Warnw("payment_submitted_event_publish_failed", "err", err, "transaction_id", ev.TransactionID)
	}
}

func (s *Service) saveAudit(ctx context.Context, r *run, status models.PaymentSubmissionLogStatus, runErr error) {
	if s.audit == nil {
		return
	}
	req := r.req
	data, _ := json.Marshal(map[string]any{
		"amount":           req.Amount,
		"item_id":          req.ItemID,
		"transaction_type": req.TransactionType,
		"has_screenshot":   req.Screenshot.File() != nil || r.file != nil,
	})
	entry := &models.PaymentSubmissionLog{
		UserID:          lo.ToPtr(r.userID),
		TraceID:         logctx.TraceID(ctx),
		TransactionID:   r.result.TransactionID,
		TransactionType: string(req.TransactionType),
		State:           string(r.result.State),
		Data:            datatypes.JSON(data),
		Status:          status,
	}
	if status != models.PaymentSubmissionLogStatusReceived {
		out := map[string]any{"payment_uri": r.paymentURI}
		if runErr != nil {
			out["error"] = runErr.Error()
		}
		b, _ := json.Marshal(out)
		entry.Result = lo.ToPtr(datatypes.JSON(b))
	}
	s.audit.Save(ctx, entry)
}

// ListUserTransactions returns the caller's own records, newest first.
func (s *Service) ListUserTransactions(ctx context.Context, userID string, from, size int) ([]*models.PaymentTransaction, int64, error) {
	return s.repo.ListByUser(ctx, userID, from, size)
}

// ScanTransactions is the read-only admin listing.
func (s *Service) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := types.CheckFields(req.Filters, ScanFilterFields...); err != nil {
		return nil, err
	}
	return s.repo.Scan(ctx, req)
}

// Intent builds the UPI deep link for a payment without submitting it.
func (s *Service) Intent(amount int64, transactionType types.TransactionType, itemID string) (string, error) {
	if !transactionType.Valid() {
		return "", newError(ErrValidation, msgInvalidType, nil)
	}
	uri, err := upi.BuildIntent(upi.Intent{
		PayeeHandle:     s.opts.PayeeHandle,
		PayeeName:       s.opts.PayeeName,
		Amount:          amount,
		Currency:        s.opts.Currency,
		TransactionType: string(transactionType),
		ItemID:          itemID,
	})
	if errors.Is(err, upi.ErrPayeeNotConfigured) {
		return "", newError(ErrConfiguration, msgNotConfigured, err)
	}
	if err != nil {
		return "", newError(ErrValidation, msgInvalidAmount, err)
	}
	return uri, nil
}
