package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lvdashuaibi/awardvote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLErrorNumber(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'u1-c1' for key 'votes.uq_votes_voter_category'"}

	assert.Equal(t, uint16(mysqlErrDuplicateEntry), mysqlErrorNumber(dup))
	assert.Equal(t, uint16(mysqlErrDuplicateEntry), mysqlErrorNumber(fmt.Errorf("exec: %w", dup)))
	assert.Equal(t, uint16(0), mysqlErrorNumber(errors.New("connection reset")))
}

func TestTranslateCategoryError(t *testing.T) {
	nameTaken := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Best Actor' for key 'categories.uq_categories_name'"}
	assert.ErrorIs(t, translateCategoryError(nameTaken), model.ErrCategoryExists)

	pk := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'categories.PRIMARY'"}
	assert.Equal(t, pk, translateCategoryError(pk))

	other := errors.New("timeout")
	assert.Equal(t, other, translateCategoryError(other))
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString(nil).Valid)

	s := "desc"
	ns := nullString(&s)
	assert.True(t, ns.Valid)
	assert.Equal(t, "desc", ns.String)
}

func newMockRepository(t *testing.T) (*MySQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLRepositoryFromDB(db, nil, nil), mock
}

func TestMySQLRepository_InsertVote(t *testing.T) {
	in := model.NewVote{CategoryID: "c1", NomineeID: "n1", VoterID: "u1", VoterEmail: "u1@example.com"}
	insert := regexp.QuoteMeta("INSERT INTO votes")

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "ok"},
		{
			name:    "duplicate voter and category",
			execErr: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'u1-c1' for key 'votes.uq_votes_voter_category'"},
			wantErr: model.ErrDuplicateVote,
		},
		{
			name:    "unknown nominee",
			execErr: &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			exec := mock.ExpectExec(insert).
				WithArgs(sqlmock.AnyArg(), in.CategoryID, in.NomineeID, in.VoterID, in.VoterEmail, sqlmock.AnyArg())
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			vote, err := repo.InsertVote(context.Background(), in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, vote)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, vote.ID)
				assert.Equal(t, in.VoterID, vote.VoterID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("other driver errors are not duplicates", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(insert).WillReturnError(errors.New("connection reset"))

		_, err := repo.InsertVote(context.Background(), in)
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrDuplicateVote)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLRepository_LinkNominee(t *testing.T) {
	selectExisting := regexp.QuoteMeta("SELECT id, category_id, nominee_id FROM nominations WHERE category_id = ? AND nominee_id = ?")
	insert := regexp.QuoteMeta("INSERT INTO nominations")
	cols := []string{"id", "category_id", "nominee_id"}

	t.Run("existing link is returned", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectExisting).WithArgs("c1", "n1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("nom-1", "c1", "n1"))
		mock.ExpectRollback()

		n, err := repo.LinkNominee(context.Background(), "c1", "n1")
		require.NoError(t, err)
		assert.Equal(t, &model.Nomination{ID: "nom-1", CategoryID: "c1", NomineeID: "n1"}, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("new link is inserted", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectExisting).WithArgs("c1", "n1").WillReturnRows(sqlmock.NewRows(cols))
		mock.ExpectExec(insert).WithArgs(sqlmock.AnyArg(), "c1", "n1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		n, err := repo.LinkNominee(context.Background(), "c1", "n1")
		require.NoError(t, err)
		assert.NotEmpty(t, n.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown category rolls back", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectExisting).WithArgs("missing", "n1").WillReturnRows(sqlmock.NewRows(cols))
		mock.ExpectExec(insert).WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
		mock.ExpectRollback()

		_, err := repo.LinkNominee(context.Background(), "missing", "n1")
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLRepository_UpdateCategory(t *testing.T) {
	update := regexp.QuoteMeta("UPDATE categories SET name = ?, description = ? WHERE id = ?")
	reread := regexp.QuoteMeta("SELECT id, name, description, created_at FROM categories WHERE id = ?")

	t.Run("missing category", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(update).WithArgs("Best Film", nil, "missing").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(reread).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateCategory(context.Background(), "missing", "Best Film", nil)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("name taken", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(update).WillReturnError(&mysql.MySQLError{
			Number:  1062,
			Message: "Duplicate entry 'Best Film' for key 'categories.uq_categories_name'",
		})

		_, err := repo.UpdateCategory(context.Background(), "c1", "Best Film", nil)
		assert.ErrorIs(t, err, model.ErrCategoryExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unchanged values still return the row", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		desc := "films"
		created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectExec(update).WithArgs("Best Film", desc, "c1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(reread).WithArgs("c1").WillReturnRows(
			sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).AddRow("c1", "Best Film", desc, created))

		c, err := repo.UpdateCategory(context.Background(), "c1", "Best Film", &desc)
		require.NoError(t, err)
		assert.Equal(t, "Best Film", c.Name)
		require.NotNil(t, c.Description)
		assert.Equal(t, desc, *c.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
