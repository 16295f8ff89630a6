package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/mailer"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/codes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentCode struct {
	to, code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (m *fakeMailer) SendCode(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentCode{to: to, code: code})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentCode {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type codeFixture struct {
	svc   *CodeService
	store *memStore
	mock  sqlmock.Sqlmock
	codec *auth.Codec
	now   time.Time
}

func newCodeFixture(t *testing.T, m mailer.Mailer) *codeFixture {
	t.Helper()
	db, mock := newMockDB(t)
	store := newMemStore()
	rm := &fakeRepoManager{store: store}
	cfg := &config.Config{CodeValidityDuration: 10 * time.Minute}

	f := &codeFixture{store: store, mock: mock, now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.codec = auth.NewCodec("secret", time.Hour).WithClock(func() time.Time { return f.now })

	f.svc = NewCodeService(db, rm, NewDirectory(db, rm), f.codec, m, discardLogger(t), cfg)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func newCodeService(t *testing.T, db *sql.DB, store *memStore, m mailer.Mailer) *CodeService {
	t.Helper()
	rm := &fakeRepoManager{store: store}
	cfg := &config.Config{CodeValidityDuration: 10 * time.Minute}
	return NewCodeService(db, rm, NewDirectory(db, rm), auth.NewCodec("secret", time.Hour), m, discardLogger(t), cfg)
}

func TestRequestCode_ThenVerify_SignsInWithLowercasedEmail(t *testing.T) {
	m := &fakeMailer{}
	f := newCodeFixture(t, m)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	ctx := context.Background()

	res, err := f.svc.RequestCode(ctx, "Ann@Example.COM")
	require.NoError(t, err)
	assert.False(t, res.DevMode)
	assert.Empty(t, res.Code)

	sent := m.last(t)
	assert.Equal(t, "ann@example.com", sent.to)
	assert.Len(t, sent.code, 6)
	assert.Equal(t, f.now.Add(10*time.Minute), f.store.codes["ann@example.com"].ExpiresAt)

	result, err := f.svc.VerifyCode(ctx, "ANN@example.com", " "+sent.code+" ")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", result.User.Email)
	assert.Equal(t, "ann", result.User.Name)

	claims, err := f.codec.Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.NotContains(t, f.store.codes, "ann@example.com")
}

func TestVerifyCode_SecondUseFails(t *testing.T) {
	f := newCodeFixture(t, nil)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	ctx := context.Background()

	res, err := f.svc.RequestCode(ctx, "bob@example.com")
	require.NoError(t, err)
	require.True(t, res.DevMode)

	_, err = f.svc.VerifyCode(ctx, "bob@example.com", res.Code)
	require.NoError(t, err)

	_, err = f.svc.VerifyCode(ctx, "bob@example.com", res.Code)
	assert.ErrorIs(t, err, common.ErrCodeNotFound)
}

func TestVerifyCode_ConcurrentConsumerLoses(t *testing.T) {
	f := newCodeFixture(t, nil)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	ctx := context.Background()

	res, err := f.svc.RequestCode(ctx, "bob@example.com")
	require.NoError(t, err)

	f.svc.repomanager = &racingRepoManager{fakeRepoManager{store: f.store}}

	_, err = f.svc.VerifyCode(ctx, "bob@example.com", res.Code)
	assert.ErrorIs(t, err, common.ErrCodeNotFound)
	assert.Empty(t, f.store.users)
}

func TestVerifyCode_Expired(t *testing.T) {
	f := newCodeFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.RequestCode(ctx, "c@example.com")
	require.NoError(t, err)

	f.now = f.now.Add(10*time.Minute + time.Second)
	_, err = f.svc.VerifyCode(ctx, "c@example.com", res.Code)
	assert.ErrorIs(t, err, common.ErrCodeExpired)
	assert.Empty(t, f.store.users)
}

func TestVerifyCode_WrongCodeKeepsStoredCode(t *testing.T) {
	f := newCodeFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.RequestCode(ctx, "d@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if res.Code == wrong {
		wrong = "111111"
	}
	_, err = f.svc.VerifyCode(ctx, "d@example.com", wrong)
	assert.ErrorIs(t, err, common.ErrInvalidCode)
	assert.Contains(t, f.store.codes, "d@example.com")
}

func TestVerifyCode_NoOutstandingCode(t *testing.T) {
	f := newCodeFixture(t, nil)
	_, err := f.svc.VerifyCode(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, common.ErrCodeNotFound)
}

func TestRequestCode_NewCodeReplacesOld(t *testing.T) {
	m := &fakeMailer{}
	f := newCodeFixture(t, m)
	ctx := context.Background()

	_, err := f.svc.RequestCode(ctx, "e@example.com")
	require.NoError(t, err)
	_, err = f.svc.RequestCode(ctx, "e@example.com")
	require.NoError(t, err)

	assert.Len(t, f.store.codes, 1)
	assert.Equal(t, m.last(t).code, f.store.codes["e@example.com"].Code)
}

func TestRequestCode_InvalidEmailWritesNothing(t *testing.T) {
	m := &fakeMailer{}
	f := newCodeFixture(t, m)

	_, err := f.svc.RequestCode(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, common.ErrInvalidEmail)
	assert.Empty(t, f.store.codes)
	assert.Empty(t, m.sent)
}

func TestRequestCode_DeliveryFailureKeepsCode(t *testing.T) {
	m := &fakeMailer{err: errors.New("smtp down")}
	f := newCodeFixture(t, m)

	_, err := f.svc.RequestCode(context.Background(), "f@example.com")
	assert.ErrorIs(t, err, common.ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Contains(t, f.store.codes, "f@example.com")
}

func TestRequestCode_StoreFailure(t *testing.T) {
	db, _ := newMockDB(t)
	store := newMemStore()
	store.errs["codes.Upsert"] = errors.New("db down")
	m := &fakeMailer{}

	_, err := newCodeService(t, db, store, m).RequestCode(context.Background(), "g@example.com")
	require.Error(t, err)
	assert.Empty(t, m.sent)
}

// racingRepoManager hands out a codes repository whose Consume always
// observes another consumer.
type racingRepoManager struct {
	fakeRepoManager
}

func (m *racingRepoManager) Codes(dbx.DBTX) codes.Repository {
	return &racingCodes{fakeCodes{m.store}}
}

type racingCodes struct {
	fakeCodes
}

func (r *racingCodes) Consume(context.Context, string, string) (*models.VerificationCode, error) {
	return nil, common.ErrorNotFound
}
