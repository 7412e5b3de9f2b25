package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	columns = []string{"id", "name", "email", "password_hash", "is_adm", "created_on", "updated_on"}
	ts      = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	insertQ   = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash,\s*is_adm,\s*created_on,\s*updated_on\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*$`
	byIDQ     = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*is_adm,\s*created_on,\s*updated_on\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	byEmailQ  = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	listQ     = `(?s)^SELECT\s+id,.*FROM\s+users\s+ORDER\s+BY\s+created_on,\s*id$`
	forUpdQ   = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`
	updateQ   = `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,\s*email\s*=\s*\$3,\s*password_hash\s*=\s*\$4,\s*is_adm\s*=\s*\$5,\s*updated_on\s*=\s*\$6\s+WHERE\s+id\s*=\s*\$1$`
	deleteQ   = `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	uniqueErr = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRow(id, email string) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(id, "Ann", email, "hash", false, ts, ts)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs("u-1", "Ann", "ann@x.io", "hash", true, ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{ID: "u-1", Name: "Ann", Email: "ann@x.io", PasswordHash: "hash", IsAdm: true, CreatedOn: ts, UpdatedOn: ts}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnError(uniqueErr)

	err := repo.Create(context.Background(), &models.User{ID: "u-1", Email: "ann@x.io"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.User{ID: "u-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).WithArgs("u-1").WillReturnRows(userRow("u-1", "ann@x.io"))

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "ann@x.io" || !got.CreatedOn.Equal(ts) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).WithArgs("ann@x.io").WillReturnRows(userRow("u-1", "ann@x.io"))
	mock.ExpectQuery(byEmailQ).WithArgs("ghost@x.io").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(byEmailQ).WithArgs("err@x.io").WillReturnError(errors.New("db err"))

	got, err := repo.GetByEmail(context.Background(), "ann@x.io")
	if err != nil || got.ID != "u-1" {
		t.Fatalf("GetByEmail: %+v, %v", got, err)
	}

	if _, err := repo.GetByEmail(context.Background(), "ghost@x.io"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}

	_, err = repo.GetByEmail(context.Background(), "err@x.io")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("u-1", "Ann", "ann@x.io", "h1", true, ts, ts).
		AddRow("u-2", "Bob", "bob@x.io", "h2", false, ts, ts)
	mock.ExpectQuery(listQ).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "u-1" || got[1].Email != "bob@x.io" || !got[0].IsAdm {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WillReturnError(errors.New("db err"))

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	later := ts.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(forUpdQ).WithArgs("u-1").WillReturnRows(userRow("u-1", "ann@x.io"))
	mock.ExpectExec(updateQ).
		WithArgs("u-1", "Anna", "ann@x.io", "hash", false, later).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Update(context.Background(), "u-1", func(u *models.User) error {
		u.Name = "Anna"
		u.UpdatedOn = later
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Name != "Anna" || got.ID != "u-1" || !got.CreatedOn.Equal(ts) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(forUpdQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "ghost", func(u *models.User) error { return nil })
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdate_EmailTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(forUpdQ).WithArgs("u-1").WillReturnRows(userRow("u-1", "ann@x.io"))
	mock.ExpectExec(updateQ).WillReturnError(uniqueErr)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "u-1", func(u *models.User) error {
		u.Email = "bob@x.io"
		return nil
	})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdate_FnErrorRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(forUpdQ).WithArgs("u-1").WillReturnRows(userRow("u-1", "ann@x.io"))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "u-1", func(u *models.User) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQ).WithArgs("err").WillReturnError(errors.New("db err"))

	if err := repo.Delete(context.Background(), "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "err"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRepositoriesSatisfyInterface(t *testing.T) {
	var _ Repository = (*PostgresRepository)(nil)
	var _ Repository = (*MemoryRepository)(nil)
}
