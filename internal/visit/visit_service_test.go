package visit

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"go-fieldtrack/internal/evidence"
	evidencemock "go-fieldtrack/internal/evidence/mock"
	"go-fieldtrack/internal/identity"
	"go-fieldtrack/internal/shared/apperror"
	visiterrors "go-fieldtrack/internal/visit/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type fakeRepo struct {
	withTxFn            func(tx *sql.Tx) Repository
	createFn            func(ctx context.Context, v *Visit) error
	findAllFn           func(ctx context.Context) ([]Visit, error)
	findAllByEmployeeFn func(ctx context.Context, employeeID string) ([]Visit, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}
func (f *fakeRepo) Create(ctx context.Context, v *Visit) error { return f.createFn(ctx, v) }
func (f *fakeRepo) FindAll(ctx context.Context) ([]Visit, error) {
	return f.findAllFn(ctx)
}
func (f *fakeRepo) FindAllByEmployee(ctx context.Context, employeeID string) ([]Visit, error) {
	return f.findAllByEmployeeFn(ctx, employeeID)
}

type fakeProvisioner struct {
	err   error
	calls int
}

func (f *fakeProvisioner) EnsureExists(ctx context.Context, ident identity.Identity) error {
	f.calls++
	return f.err
}

func testIdentity() identity.Identity {
	return identity.Identity{
		ID:    uuid.New().String(),
		Email: "field@example.com",
		Name:  "Field Agent",
		Role:  identity.RoleEmployee,
	}
}

func testPhoto() evidence.Upload {
	return evidence.Upload{
		FileName:    "visit.jpg",
		ContentType: "image/jpeg",
		Content:     strings.NewReader("jpeg-bytes"),
	}
}

func TestService_Submit_PersistsUploadedURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	const photoURL = "https://ucarecdn.com/11111111-2222-3333-4444-555555555555/"

	store := evidencemock.NewMockStore(ctrl)
	store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(photoURL, nil)

	var saved Visit
	repo := &fakeRepo{
		createFn: func(ctx context.Context, v *Visit) error { saved = *v; return nil },
	}

	lat, lon := -6.2088, 106.8456
	svc := NewService(db, repo, store, &fakeProvisioner{}, nil).(*service)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 14, 30, 5, 0, time.UTC) }

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Submit(context.Background(), testIdentity(), SubmitVisitRequest{
		Latitude:     &lat,
		Longitude:    &lon,
		LocationName: "Jakarta Office",
		Notes:        "stock audit",
	}, testPhoto())

	assert.NoError(t, err)
	assert.Equal(t, photoURL, saved.PhotoURL)
	assert.Equal(t, "2026-03-02", resp.VisitDate)
	assert.Equal(t, "14:30:05", resp.VisitTime)
	assert.Equal(t, "Jakarta Office", saved.LocationName)
	if assert.NotNil(t, saved.Latitude) {
		assert.Equal(t, lat, *saved.Latitude)
	}
	if assert.NotNil(t, saved.Notes) {
		assert.Equal(t, "stock audit", *saved.Notes)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Submit_MissingGeoStaysNil(t *testing.T) {
	ctrl := gomock.NewController(t)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	store := evidencemock.NewMockStore(ctrl)
	store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("https://ucarecdn.com/abc/", nil)

	var saved Visit
	repo := &fakeRepo{
		createFn: func(ctx context.Context, v *Visit) error { saved = *v; return nil },
	}

	svc := NewService(db, repo, store, &fakeProvisioner{}, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Submit(context.Background(), testIdentity(), SubmitVisitRequest{}, testPhoto())

	assert.NoError(t, err)
	// a missing reading is not coordinate zero
	assert.Nil(t, saved.Latitude)
	assert.Nil(t, saved.Longitude)
	assert.Nil(t, saved.Notes)
	assert.Equal(t, unknownLocation, saved.LocationName)
	assert.Equal(t, unknownLocation, resp.LocationName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Submit_UploadFailureSkipsPersist(t *testing.T) {
	ctrl := gomock.NewController(t)
	db, _, _ := sqlmock.New()
	defer db.Close()

	store := evidencemock.NewMockStore(ctrl)
	store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("", errors.New("upstream 502"))

	repo := &fakeRepo{
		createFn: func(ctx context.Context, v *Visit) error {
			t.Fatal("no record may exist without stored evidence")
			return nil
		},
	}

	svc := NewService(db, repo, store, &fakeProvisioner{}, nil)
	_, err := svc.Submit(context.Background(), testIdentity(), SubmitVisitRequest{}, testPhoto())
	assert.ErrorIs(t, err, visiterrors.ErrUploadFailed)
}

func TestService_Submit_PersistFailureAfterUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	store := evidencemock.NewMockStore(ctrl)
	store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("https://ucarecdn.com/abc/", nil)

	repo := &fakeRepo{
		createFn: func(ctx context.Context, v *Visit) error {
			return &pgconn.PgError{Code: "23503", ConstraintName: "fk_visits_employee"}
		},
	}

	svc := NewService(db, repo, store, &fakeProvisioner{}, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Submit(context.Background(), testIdentity(), SubmitVisitRequest{}, testPhoto())
	assert.ErrorIs(t, err, visiterrors.ErrPersistFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Submit_PhotoRequired(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, nil, &fakeProvisioner{}, nil)
	_, err := svc.Submit(context.Background(), testIdentity(), SubmitVisitRequest{}, evidence.Upload{})
	assert.ErrorIs(t, err, visiterrors.ErrPhotoRequired)
}

func TestService_Submit_Unauthenticated(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeRepo{}, nil, &fakeProvisioner{}, nil)
	_, err := svc.Submit(context.Background(), identity.Identity{}, SubmitVisitRequest{}, testPhoto())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestService_Submit_ProvisioningFailureDoesNotBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	store := evidencemock.NewMockStore(ctrl)
	store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("https://ucarecdn.com/abc/", nil)

	repo := &fakeRepo{
		createFn: func(ctx context.Context, v *Visit) error { return nil },
	}

	prov := &fakeProvisioner{err: errors.New("directory unavailable")}
	svc := NewService(db, repo, store, prov, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Submit(context.Background(), testIdentity(), SubmitVisitRequest{}, testPhoto())
	assert.NoError(t, err)
	assert.Equal(t, 1, prov.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetAll_ScopesToActor(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	ident := testIdentity()

	var scopedTo string
	repo := &fakeRepo{
		findAllFn: func(ctx context.Context) ([]Visit, error) {
			t.Fatal("non-admin must not read the full log")
			return nil, nil
		},
		findAllByEmployeeFn: func(ctx context.Context, employeeID string) ([]Visit, error) {
			scopedTo = employeeID
			return []Visit{}, nil
		},
	}

	svc := NewService(db, repo, nil, &fakeProvisioner{}, nil)
	_, err := svc.GetAll(context.Background(), ident)
	assert.NoError(t, err)
	assert.Equal(t, ident.ID, scopedTo)
}
