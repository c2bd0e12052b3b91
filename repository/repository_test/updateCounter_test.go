package repository_test_test

import (
	"testing"

	"shrnq/repository/command_repository"
	"shrnq/repository/repository_test"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestUpdateAuthenticatorCounter_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "authenticator" SET "counter"=\$1 WHERE credential_id = \$2`).
		WithArgs(5, "Y3JlZC0x").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := command_repository.NewUserCommandRepository()
	err := repo.UpdateAuthenticatorCounter(conn, "Y3JlZC0x", 5)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
