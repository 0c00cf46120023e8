package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/swytch/paydesk/internal/app/service/catalog"
	"github.com/swytch/paydesk/internal/app/service/screenshot"
	"github.com/swytch/paydesk/internal/models"
	"github.com/swytch/paydesk/internal/platform/lock"
	"github.com/swytch/paydesk/internal/platform/objectstore"
	"github.com/swytch/paydesk/pkg/auth"
	"github.com/swytch/paydesk/pkg/metrics"
	"github.com/swytch/paydesk/pkg/tool"
	"github.com/swytch/paydesk/pkg/types"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var submittedAt = time.UnixMilli(1760000000123)

type fakeRepo struct {
	Repository
	mu     sync.Mutex
	err    error
	recs   []*models.PaymentTransaction
	grants []*models.UserMembership
}

func (f *fakeRepo) CreateSubmission(ctx context.Context, rec *models.PaymentTransaction, grant *models.UserMembership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	if grant != nil {
		f.grants = append(f.grants, grant)
	}
	return nil
}

type fakeGuard struct {
	active bool
	err    error
	block  bool
	calls  int
}

func (f *fakeGuard) HasActiveMembership(ctx context.Context, userID string) (bool, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return f.active, f.err
}

// stuckLocker never answers before its context ends.
type stuckLocker struct{}

func (stuckLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// failingStore fails uploads, or blocks until the step deadline when block is set.
type failingStore struct {
	err     error
	block   bool
	uploads int
}

func (f *failingStore) Upload(ctx context.Context, key, contentType string, body []byte) error {
	f.uploads++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *failingStore) DownloadURL(ctx context.Context, key string) (string, error) {
	return "", f.err
}

type fakePublisher struct {
	err    error
	events []any
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, body any) error {
	if routingKey != SubmittedRoutingKey {
		return fmt.Errorf("unexpected routing key %s", routingKey)
	}
	f.events = append(f.events, body)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakeAudit struct {
	mu      sync.Mutex
	entries []*models.PaymentSubmissionLog
}

func (f *fakeAudit) Save(ctx context.Context, e *models.PaymentSubmissionLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

type harness struct {
	svc       *Service
	repo      *fakeRepo
	guard     *fakeGuard
	store     objectstore.Store
	mem       *objectstore.Memory
	publisher *fakePublisher
	locker    *lock.Memory
	audit     *fakeAudit
	metrics   *metrics.Payment
}

type option func(*Deps)

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultTiers)
	require.NoError(t, err)
	m, err := metrics.NewPayment(nil)
	require.NoError(t, err)

	h := &harness{
		repo:      &fakeRepo{},
		guard:     &fakeGuard{},
		mem:       objectstore.NewMemory("https://files.test/"),
		publisher: &fakePublisher{},
		locker:    lock.NewMemory(),
		audit:     &fakeAudit{},
		metrics:   m,
	}
	h.store = h.mem
	d := Deps{
		Options: Options{
			PayeeHandle: "swytch@okaxis",
			PayeeName:   "Swytch",
			Currency:    "INR",
			StepTimeout: time.Second,
		},
		Catalog:   cat,
		Guard:     h.guard,
		Repo:      h.repo,
		Store:     h.store,
		Publisher: h.publisher,
		Locker:    h.locker,
		Audit:     h.audit,
		Clock:     tool.FixedClock{T: submittedAt},
		Metrics:   m,
	}
	for _, o := range opts {
		o(&d)
	}
	h.svc = NewService(d)
	return h
}

func stagedSlot(t *testing.T) *screenshot.Slot {
	t.Helper()
	slot := &screenshot.Slot{}
	require.NoError(t, slot.Stage(&screenshot.File{
		Name:        "proof.png",
		ContentType: "image/png",
		Size:        int64(len(pngBytes)),
		Data:        pngBytes,
	}))
	return slot
}

func principal() *auth.Principal {
	return &auth.Principal{UserID: "u1", DisplayName: "Asha"}
}

func TestSubmit_MembershipSucceeds(t *testing.T) {
	h := newHarness(t)
	slot := stagedSlot(t)
	var states []State
	var unlocked []string

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          499,
		ItemID:          "membership_basic",
		TransactionType: types.TransactionTypeMembership,
		Screenshot:      slot,
		OnSuccess:       func(itemID string) { unlocked = append(unlocked, itemID) },
		Observer:        func(s State) { states = append(states, s) },
	})
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, res.State)
	require.Equal(t, []State{StateValidating, StateUploading, StatePersisting, StateSucceeded}, states)
	require.Equal(t, []string{"membership_basic"}, unlocked)

	wantID := "u1_1760000000123"
	require.Equal(t, wantID, res.TransactionID)
	require.Equal(t, types.TransactionStatusPending, res.Status)
	require.Equal(t, "Payment submitted for admin verification. Transaction ID: "+wantID, res.Message)
	require.Equal(t, "upi://pay?pa=swytch@okaxis&pn=Swytch&am=499&cu=INR&tn=membership_membership_basic", res.PaymentURI)

	key := "payment_screenshots/u1_1760000000123.png"
	obj, ok := h.mem.Get(key)
	require.True(t, ok)
	require.Equal(t, "image/png", obj.ContentType)
	require.Equal(t, "https://files.test/"+key, res.ScreenshotURL)

	require.Len(t, h.repo.recs, 1)
	rec := h.repo.recs[0]
	require.Equal(t, wantID, rec.TransactionID)
	require.Equal(t, "u1", rec.UserID)
	require.Equal(t, "499", rec.Amount)
	require.Equal(t, types.TransactionStatusPending, rec.Status)
	require.Equal(t, "membership_basic", *rec.ItemID)
	require.Equal(t, res.ScreenshotURL, *rec.ScreenshotURL)
	require.Equal(t, key, *rec.ScreenshotKey)
	require.Equal(t, "Basic", rec.Extra.Data().TierName)

	require.Len(t, h.repo.grants, 1)
	require.Equal(t, "membership_basic", h.repo.grants[0].Membership)
	require.Equal(t, wantID, *h.repo.grants[0].SourceTransactionID)

	require.Len(t, h.publisher.events, 1)
	ev := h.publisher.events[0].(*SubmittedEvent)
	require.Equal(t, wantID, ev.TransactionID)
	require.Equal(t, submittedAt, ev.SubmittedAt)

	require.Nil(t, slot.File())
	require.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Submissions().WithLabelValues("membership", "succeeded")))

	require.Len(t, h.audit.entries, 2)
	require.Equal(t, models.PaymentSubmissionLogStatusReceived, h.audit.entries[0].Status)
	require.Equal(t, models.PaymentSubmissionLogStatusHandled, h.audit.entries[1].Status)
}

func TestSubmit_MembershipAmountMismatchForEveryTier(t *testing.T) {
	for _, tier := range catalog.DefaultTiers {
		for _, amount := range []int64{tier.Amount - 1, tier.Amount + 1, 1} {
			t.Run(fmt.Sprintf("%s/%d", tier.ID, amount), func(t *testing.T) {
				h := newHarness(t)
				called := false
				res, err := h.svc.Submit(context.Background(), &SubmitRequest{
					Principal:       principal(),
					Amount:          amount,
					ItemID:          tier.ID,
					TransactionType: types.TransactionTypeMembership,
					Screenshot:      stagedSlot(t),
					OnSuccess:       func(string) { called = true },
				})
				require.ErrorIs(t, err, ErrValidation)
				require.Equal(t, StateRejected, res.State)
				require.Equal(t, "Amount does not match the selected membership price", res.Message)
				require.Empty(t, res.TransactionID)
				require.Empty(t, h.repo.recs)
				require.False(t, called)
				require.Zero(t, h.guard.calls)
			})
		}
	}
}

func TestSubmit_ActiveMembershipIsRejected(t *testing.T) {
	h := newHarness(t)
	h.guard.active = true
	var states []State

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          999,
		ItemID:          "membership_pro",
		TransactionType: types.TransactionTypeMembership,
		Screenshot:      stagedSlot(t),
		Observer:        func(s State) { states = append(states, s) },
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, "You already have an active membership", UserMessage(err))
	require.Equal(t, []State{StateValidating, StateRejected}, states)
	require.Equal(t, StateRejected, res.State)
	require.Empty(t, h.repo.recs)
	require.Equal(t, 1, h.guard.calls)
}

func TestSubmit_WithdrawSkipsUpload(t *testing.T) {
	h := newHarness(t)
	var states []State
	calls := 0

	// a staged file is ignored for withdrawals
	slot := stagedSlot(t)
	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          250,
		TransactionType: types.TransactionTypeWithdraw,
		Screenshot:      slot,
		OnSuccess:       func(string) { calls++ },
		Observer:        func(s State) { states = append(states, s) },
	})
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, res.State)
	require.Equal(t, []State{StateValidating, StatePersisting, StateSucceeded}, states)
	require.Equal(t, 1, calls)
	require.Empty(t, res.ScreenshotURL)
	require.Equal(t, "upi://pay?pa=swytch@okaxis&pn=Swytch&am=250&cu=INR&tn=withdraw", res.PaymentURI)

	require.Len(t, h.repo.recs, 1)
	require.Nil(t, h.repo.recs[0].ItemID)
	require.Nil(t, h.repo.recs[0].ScreenshotURL)
	require.Empty(t, h.repo.grants)
	_, ok := h.mem.Get("payment_screenshots/u1_1760000000123.png")
	require.False(t, ok)
	require.Nil(t, slot.File())
}

func TestSubmit_UploadFailureWritesNothing(t *testing.T) {
	store := &failingStore{err: errors.New("connection reset")}
	h := newHarness(t, func(d *Deps) { d.Store = store })
	slot := stagedSlot(t)
	var states []State
	called := false

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          120,
		ItemID:          "content_42",
		TransactionType: types.TransactionTypeContentPurchase,
		Screenshot:      slot,
		OnSuccess:       func(string) { called = true },
		Observer:        func(s State) { states = append(states, s) },
	})
	require.ErrorIs(t, err, ErrUpload)
	require.True(t, IsRetryable(err))
	require.Equal(t, StateFailed, res.State)
	require.Equal(t, "Failed to upload payment screenshot. Please try again.", res.Message)
	require.Equal(t, []State{StateValidating, StateUploading, StateFailed}, states)
	require.Empty(t, h.repo.recs)
	require.Empty(t, h.publisher.events)
	require.False(t, called)
	require.Nil(t, slot.File())
	require.Equal(t, models.PaymentSubmissionLogStatusHandleFailed, h.audit.entries[len(h.audit.entries)-1].Status)

	// the lock is released, so a fresh attempt runs again
	_, err = h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          120,
		ItemID:          "content_42",
		TransactionType: types.TransactionTypeContentPurchase,
		Screenshot:      stagedSlot(t),
	})
	require.ErrorIs(t, err, ErrUpload)
	require.Equal(t, 2, store.uploads)
}

func TestSubmit_UploadTimeoutIsRetryable(t *testing.T) {
	store := &failingStore{block: true}
	h := newHarness(t, func(d *Deps) {
		d.Store = store
		d.Options.StepTimeout = 20 * time.Millisecond
	})

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          499,
		ItemID:          "membership_basic",
		TransactionType: types.TransactionTypeMembership,
		Screenshot:      stagedSlot(t),
	})
	require.ErrorIs(t, err, ErrUpload)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, IsRetryable(err))
	require.Equal(t, StateFailed, res.State)
	require.Equal(t, "Screenshot upload timed out. Please try again.", res.Message)
	require.Empty(t, h.repo.recs)
}

func TestSubmit_PersistenceFailure(t *testing.T) {
	h := newHarness(t)
	h.repo.err = errors.New("connection refused")
	called := false

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          1999,
		ItemID:          "membership_premium",
		TransactionType: types.TransactionTypeMembership,
		Screenshot:      stagedSlot(t),
		OnSuccess:       func(string) { called = true },
	})
	require.ErrorIs(t, err, ErrPersistence)
	require.True(t, IsRetryable(err))
	require.Equal(t, StateFailed, res.State)
	require.Equal(t, "Failed to submit payment. Please try again.", res.Message)
	require.False(t, called)
	require.Empty(t, h.publisher.events)
	require.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Submissions().WithLabelValues("membership", "failed")))
}

func TestSubmit_DuplicateKeyIsPersistenceError(t *testing.T) {
	h := newHarness(t)
	h.repo.err = fmt.Errorf("failed to create payment transaction: %w", gorm.ErrDuplicatedKey)

	_, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          10,
		TransactionType: types.TransactionTypeWithdraw,
	})
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	require.Equal(t, "This payment was already submitted. Please try again in a moment.", UserMessage(err))
}

func TestSubmit_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *SubmitRequest
		payee   string
		kind    error
		message string
	}{
		{
			name: "no principal",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Amount: 499, ItemID: "membership_basic", TransactionType: types.TransactionTypeMembership, Screenshot: stagedSlot(t)}
			},
			kind:    ErrNotAuthenticated,
			message: "Please log in to continue",
		},
		{
			name: "zero amount",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), TransactionType: types.TransactionTypeWithdraw}
			},
			kind:    ErrValidation,
			message: "Please enter a valid amount",
		},
		{
			name: "unknown type",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 10, TransactionType: "gift"}
			},
			kind:    ErrValidation,
			message: "Invalid transaction type",
		},
		{
			name: "membership without screenshot",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 1, ItemID: "nope", TransactionType: types.TransactionTypeMembership}
			},
			kind:    ErrValidation,
			message: "Please upload a UPI payment screenshot",
		},
		{
			name: "unknown tier",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 499, ItemID: "membership_gold", TransactionType: types.TransactionTypeMembership, Screenshot: stagedSlot(t)}
			},
			kind:    ErrValidation,
			message: "Invalid membership tier",
		},
		{
			name: "content without id",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 50, TransactionType: types.TransactionTypeContentPurchase}
			},
			kind:    ErrValidation,
			message: "Content ID is required",
		},
		{
			name: "content without screenshot",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 50, ItemID: "content_1", TransactionType: types.TransactionTypeContentPurchase}
			},
			kind:    ErrValidation,
			message: "Please upload a UPI payment screenshot",
		},
		{
			name: "payee missing for withdraw",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 50, TransactionType: types.TransactionTypeWithdraw}
			},
			payee:   " ",
			kind:    ErrConfiguration,
			message: "UPI ID is not configured. Please contact support.",
		},
		{
			name: "payee missing for valid membership",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 499, ItemID: "membership_basic", TransactionType: types.TransactionTypeMembership, Screenshot: stagedSlot(t)}
			},
			payee:   " ",
			kind:    ErrConfiguration,
			message: "UPI ID is not configured. Please contact support.",
		},
		{
			name: "payee missing for valid content purchase",
			req: func(t *testing.T) *SubmitRequest {
				return &SubmitRequest{Principal: principal(), Amount: 120, ItemID: "content_42", TransactionType: types.TransactionTypeContentPurchase, Screenshot: stagedSlot(t)}
			},
			payee:   " ",
			kind:    ErrConfiguration,
			message: "UPI ID is not configured. Please contact support.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(d *Deps) {
				if tt.payee != "" {
					d.Options.PayeeHandle = tt.payee
				}
			})
			req := tt.req(t)
			res, err := h.svc.Submit(context.Background(), req)
			require.ErrorIs(t, err, tt.kind)
			require.False(t, IsRetryable(err))
			require.Equal(t, tt.message, UserMessage(err))
			require.Equal(t, StateRejected, res.State)
			require.Equal(t, tt.message, res.Message)
			require.Empty(t, h.repo.recs)
			require.Empty(t, h.repo.grants)
			require.Empty(t, h.publisher.events)
			_, uploaded := h.mem.Get("payment_screenshots/u1_1760000000123.png")
			require.False(t, uploaded)
			require.Nil(t, req.Screenshot.File())
		})
	}
}

func TestSubmit_InFlightSubmissionIsRejected(t *testing.T) {
	h := newHarness(t)
	release, err := h.locker.TryLock(context.Background(), "u1", time.Minute)
	require.NoError(t, err)

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          10,
		TransactionType: types.TransactionTypeWithdraw,
	})
	require.ErrorIs(t, err, ErrSubmissionInProgress)
	require.Equal(t, StateRejected, res.State)
	require.Empty(t, h.repo.recs)

	release()
	res, err = h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          10,
		TransactionType: types.TransactionTypeWithdraw,
	})
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, res.State)
}

func TestSubmit_GuardErrorFails(t *testing.T) {
	h := newHarness(t)
	h.guard.err = errors.New("db down")

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          499,
		ItemID:          "membership_basic",
		TransactionType: types.TransactionTypeMembership,
		Screenshot:      stagedSlot(t),
	})
	require.ErrorIs(t, err, ErrPersistence)
	require.Equal(t, StateFailed, res.State)
	require.Equal(t, "Could not verify your membership. Please try again.", res.Message)
}

func TestSubmit_GuardTimeoutFails(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Options.StepTimeout = 20 * time.Millisecond })
	h.guard.block = true

	start := time.Now()
	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          499,
		ItemID:          "membership_basic",
		TransactionType: types.TransactionTypeMembership,
		Screenshot:      stagedSlot(t),
	})
	require.Less(t, time.Since(start), time.Second)
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, IsRetryable(err))
	require.Equal(t, StateFailed, res.State)
	require.Equal(t, "Could not verify your membership. Please try again.", res.Message)
	require.Empty(t, h.repo.recs)
	_, uploaded := h.mem.Get("payment_screenshots/u1_1760000000123.png")
	require.False(t, uploaded)
}

func TestSubmit_LockTimeoutFails(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.Locker = stuckLocker{}
		d.Options.StepTimeout = 20 * time.Millisecond
	})

	start := time.Now()
	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          10,
		TransactionType: types.TransactionTypeWithdraw,
	})
	require.Less(t, time.Since(start), time.Second)
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StateFailed, res.State)
	require.Empty(t, h.repo.recs)
	require.Zero(t, h.guard.calls)
}

func TestSubmit_AuditRecordsTerminalState(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		h := newHarness(t)
		res, err := h.svc.Submit(context.Background(), &SubmitRequest{
			Principal:       principal(),
			Amount:          1,
			ItemID:          "membership_basic",
			TransactionType: types.TransactionTypeMembership,
			Screenshot:      stagedSlot(t),
		})
		require.ErrorIs(t, err, ErrValidation)
		require.Equal(t, StateRejected, res.State)

		require.Len(t, h.audit.entries, 2)
		last := h.audit.entries[1]
		require.Equal(t, models.PaymentSubmissionLogStatusHandleFailed, last.Status)
		require.Equal(t, string(StateRejected), last.State)
		require.Equal(t, "u1_1760000000123", last.TransactionID)
	})

	t.Run("failed", func(t *testing.T) {
		h := newHarness(t, func(d *Deps) { d.Store = &failingStore{err: errors.New("connection reset")} })
		res, err := h.svc.Submit(context.Background(), &SubmitRequest{
			Principal:       principal(),
			Amount:          120,
			ItemID:          "content_42",
			TransactionType: types.TransactionTypeContentPurchase,
			Screenshot:      stagedSlot(t),
		})
		require.ErrorIs(t, err, ErrUpload)
		require.Equal(t, StateFailed, res.State)

		last := h.audit.entries[len(h.audit.entries)-1]
		require.Equal(t, models.PaymentSubmissionLogStatusHandleFailed, last.Status)
		require.Equal(t, string(StateFailed), last.State)
	})
}

func TestSubmit_PublishFailureDoesNotFailRun(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = errors.New("broker unreachable")
	calls := 0

	res, err := h.svc.Submit(context.Background(), &SubmitRequest{
		Principal:       principal(),
		Amount:          75,
		ItemID:          "content_9",
		TransactionType: types.TransactionTypeContentPurchase,
		Screenshot:      stagedSlot(t),
		OnSuccess:       func(string) { calls++ },
	})
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, res.State)
	require.Equal(t, 1, calls)
	require.Len(t, h.repo.recs, 1)
	require.Empty(t, h.repo.grants)
}

func TestSubmit_CancelledCallerStillCompletes(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	res, err := h.svc.Submit(ctx, &SubmitRequest{
		Principal:       principal(),
		Amount:          10,
		TransactionType: types.TransactionTypeWithdraw,
		Observer: func(s State) {
			if s == StatePersisting {
				cancel()
			}
		},
	})
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, res.State)
	require.Len(t, h.repo.recs, 1)
}

func TestScanTransactions_RejectsUnknownFilterField(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ScanTransactions(context.Background(), &ScanTransactionsRequest{
		Filters: []*types.CommonFilter{{Field: "amount; drop table", Operator: types.CommonFilterOperatorEq, Values: []any{"1"}}},
	})
	require.Error(t, err)
}

func TestIntent(t *testing.T) {
	h := newHarness(t)
	uri, err := h.svc.Intent(120, types.TransactionTypeContentPurchase, "content_42")
	require.NoError(t, err)
	require.Equal(t, "upi://pay?pa=swytch@okaxis&pn=Swytch&am=120&cu=INR&tn=content_purchase_content_42", uri)

	_, err = h.svc.Intent(0, types.TransactionTypeWithdraw, "")
	require.ErrorIs(t, err, ErrValidation)

	h = newHarness(t, func(d *Deps) { d.Options.PayeeHandle = "" })
	_, err = h.svc.Intent(120, types.TransactionTypeWithdraw, "")
	require.ErrorIs(t, err, ErrConfiguration)
}
