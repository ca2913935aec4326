package database_test

import (
	"career-ebook-generator/internal/database"
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"log/slog"
	"moul.io/zapgorm2"
	"os"
	"testing"
	"time"
)

var env *environment.Env
var sqlMock sqlmock.Sqlmock

func TestMain(m *testing.M) {
	mockedGormDb, sqlDb, s, err := initMockedDatabase()
	if err != nil {
		return
	}

	defer func(mockDb *sql.DB) {
		sqlMock.ExpectClose()
		cErr := mockDb.Close()

		if cErr != nil {
			slog.Error(fmt.Sprintf("close database error: %v", cErr))
			return
		}
	}(sqlDb)

	// set up the environment
	sqlMock = s
	env = environment.Null()

	env.Repository = &database.GormRepository{DB: mockedGormDb}

	code := m.Run()

	os.Exit(code)
}

func initMockedDatabase() (*gorm.DB, *sql.DB, sqlmock.Sqlmock, error) {
	mockDb, sqlM, _ := sqlmock.New()
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: setupGormLogger()})

	if err != nil {
		slog.Error(fmt.Sprintf("error initializing database: %v", err))
		return nil, nil, nil, fmt.Errorf("error initializing database: %v", err)
	}

	return db, mockDb, sqlM, nil
}

func setupGormLogger() zapgorm2.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	gormW := zapcore.AddSync(&lumberjack.Logger{
		MaxSize:    500, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	gormCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		gormW,
		zapcore.DebugLevel,
	)
	zapGormLogger := zap.New(gormCore)
	gormLogger := zapgorm2.New(zapGormLogger)
	gormLogger.SetAsDefault()

	return gormLogger
}

func parseTime(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05.999999 -07:00", value)
	if err != nil {
		panic(err)
	}
	return t
}

// ####################### GormRepository
func TestGormRepository_CreateSession(t *testing.T) {
	sqlMock.ExpectExec("^INSERT INTO sessions \\(id, created_at, updated_at, community_name, document\\) VALUES \\(\\$1, \\$2, \\$3, \\$4, \\$5\\)").
		WithArgs("0190a5d2-aaaa-7000-8000-000000000001", sqlmock.AnyArg(), sqlmock.AnyArg(), "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	session := models.Session{ID: "0190a5d2-aaaa-7000-8000-000000000001"}
	err := env.CreateSession(context.Background(), &session)
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	if session.CreatedAt.IsZero() || !session.CreatedAt.Equal(session.UpdatedAt) {
		t.Errorf("want CreatedAt == UpdatedAt and both set, got %v / %v", session.CreatedAt, session.UpdatedAt)
	}

	if err := sqlMock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGormRepository_FindSession(t *testing.T) {
	want := models.Session{
		ID:            "0190a5d2-aaaa-7000-8000-000000000002",
		CreatedAt:     parseTime("2025-05-27 10:06:56.823450 +00:00"),
		UpdatedAt:     parseTime("2025-06-18 09:22:38.894670 +00:00"),
		CommunityName: "Data Scientists",
		Document:      "<h2>PREFACE</h2>",
		Generated:     true,
	}

	rows := sqlMock.NewRows([]string{"id", "created_at", "updated_at", "community_name", "document", "generated", "converted"}).
		AddRow(want.ID, want.CreatedAt, want.UpdatedAt, want.CommunityName, want.Document, want.Generated, nil)

	// NOTE: ExpectedQuery expects a regex string as param
	sqlMock.ExpectQuery("^SELECT \\* FROM \"sessions\" WHERE id = \\$1 LIMIT \\$2").
		WithArgs(want.ID, sqlmock.AnyArg()).
		WillReturnRows(rows)

	var got models.Session
	err := env.FindSession(context.Background(), want.ID, &got)
	if err != nil {
		t.Fatalf("FindSession error: %v", err)
	}

	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestGormRepository_FindSession_NotFound(t *testing.T) {
	sqlMock.ExpectQuery("^SELECT \\* FROM \"sessions\" WHERE id = \\$1 LIMIT \\$2").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnRows(sqlMock.NewRows([]string{"id"}))

	var got models.Session
	err := env.FindSession(context.Background(), "missing", &got)
	if !errors.Is(err, database.ErrSessionNotFound) {
		t.Errorf("got error %v, want %v", err, database.ErrSessionNotFound)
	}
}

func TestGormRepository_SaveSession(t *testing.T) {
	session := models.Session{
		ID:            "0190a5d2-aaaa-7000-8000-000000000003",
		CommunityName: "Nursing Staff",
		Document:      "",
		Generated:     true,
	}

	sqlMock.ExpectExec("^UPDATE sessions SET community_name = \\$1, document = \\$2, generated = \\$3, converted = \\$4, updated_at = \\$5 WHERE id = \\$6").
		WithArgs(session.CommunityName, session.Document, true, sqlmock.AnyArg(), sqlmock.AnyArg(), session.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := env.SaveSession(context.Background(), &session); err != nil {
		t.Fatalf("SaveSession error: %v", err)
	}

	if err := sqlMock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGormRepository_SaveSession_Unknown(t *testing.T) {
	sqlMock.ExpectExec("^UPDATE sessions SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := env.SaveSession(context.Background(), &models.Session{ID: "gone"})
	if !errors.Is(err, database.ErrSessionNotFound) {
		t.Errorf("got error %v, want %v", err, database.ErrSessionNotFound)
	}
}

func TestGormRepository_DeleteSession(t *testing.T) {
	sqlMock.ExpectExec("^DELETE FROM sessions WHERE id = \\$1").
		WithArgs("0190a5d2-aaaa-7000-8000-000000000004").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := env.DeleteSession(context.Background(), "0190a5d2-aaaa-7000-8000-000000000004"); err != nil {
		t.Fatalf("DeleteSession error: %v", err)
	}

	if err := sqlMock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGormRepository_DeleteSessionsIdleSince(t *testing.T) {
	since := parseTime("2025-06-18 09:22:38.894670 +00:00")
	sqlMock.ExpectExec("^DELETE FROM sessions WHERE updated_at < \\$1").
		WithArgs(since).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := env.DeleteSessionsIdleSince(context.Background(), since)
	if err != nil {
		t.Fatalf("DeleteSessionsIdleSince error: %v", err)
	}
	if removed != 3 {
		t.Errorf("got %d removed, want 3", removed)
	}
}

// ####################### MemoryRepository
func TestMemoryRepository_Lifecycle(t *testing.T) {
	repo := database.NewMemoryRepository()
	ctx := context.Background()

	session := models.Session{ID: "mem-1"}
	if err := repo.CreateSession(ctx, &session); err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	session.CommunityName = "Data Scientists"
	session.Document = "<h2>PREFACE</h2>"
	session.Converted = []byte("%PDF")
	if err := repo.SaveSession(ctx, &session); err != nil {
		t.Fatalf("SaveSession error: %v", err)
	}

	// mutating the caller's copy must not leak into the store
	session.Converted[0] = 'X'

	var got models.Session
	if err := repo.FindSession(ctx, "mem-1", &got); err != nil {
		t.Fatalf("FindSession error: %v", err)
	}
	if got.Document != "<h2>PREFACE</h2>" || got.CommunityName != "Data Scientists" {
		t.Errorf("unexpected session %+v", got)
	}
	if string(got.Converted) != "%PDF" {
		t.Errorf("got converted %q, want %q", got.Converted, "%PDF")
	}

	if err := repo.DeleteSession(ctx, "mem-1"); err != nil {
		t.Fatalf("DeleteSession error: %v", err)
	}
	if err := repo.FindSession(ctx, "mem-1", &got); !errors.Is(err, database.ErrSessionNotFound) {
		t.Errorf("got error %v, want %v", err, database.ErrSessionNotFound)
	}
}

func TestMemoryRepository_SaveUnknown(t *testing.T) {
	repo := database.NewMemoryRepository()

	err := repo.SaveSession(context.Background(), &models.Session{ID: "nope"})
	if !errors.Is(err, database.ErrSessionNotFound) {
		t.Errorf("got error %v, want %v", err, database.ErrSessionNotFound)
	}
}

func TestMemoryRepository_DeleteSessionsIdleSince(t *testing.T) {
	repo := database.NewMemoryRepository()
	ctx := context.Background()

	old := models.Session{ID: "old"}
	_ = repo.CreateSession(ctx, &old)

	cutoff := time.Now().Add(time.Minute)

	removed, err := repo.DeleteSessionsIdleSince(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteSessionsIdleSince error: %v", err)
	}
	if removed != 1 {
		t.Errorf("got %d removed, want 1", removed)
	}

	fresh := models.Session{ID: "fresh"}
	_ = repo.CreateSession(ctx, &fresh)
	removed, _ = repo.DeleteSessionsIdleSince(ctx, time.Now().Add(-time.Hour))
	if removed != 0 {
		t.Errorf("got %d removed, want 0", removed)
	}
}
