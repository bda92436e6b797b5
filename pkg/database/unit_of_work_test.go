package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/test/testutil"
)

type UnitOfWorkTestSuite struct {
	suite.Suite

	ctx context.Context
	uow *database.GormUnitOfWork
}

func (suite *UnitOfWorkTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.uow = database.NewUnitOfWork(testutil.NewTestDB(suite.T()))
}

func (suite *UnitOfWorkTestSuite) TestAfterCommit_RunsOnceCommitted() {
	// Arrange
	var calls []string

	// Act
	err := suite.uow.Do(suite.ctx, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { calls = append(calls, "first") })
		database.AfterCommit(ctx, func() { calls = append(calls, "second") })
		suite.Empty(calls)
		return nil
	})

	// Assert
	suite.Require().NoError(err)
	suite.Equal([]string{"first", "second"}, calls)
}

func (suite *UnitOfWorkTestSuite) TestAfterCommit_DroppedOnRollback() {
	// Arrange
	ran := false

	// Act
	err := suite.uow.Do(suite.ctx, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { ran = true })
		return errors.Conflict("Week already exists")
	})

	// Assert
	suite.True(errors.IsConflict(err))
	suite.False(ran)
}

func (suite *UnitOfWorkTestSuite) TestAfterCommit_NestedWaitsForOuterCommit() {
	// Arrange
	ran := false

	// Act
	err := suite.uow.Do(suite.ctx, func(ctx context.Context) error {
		if err := suite.uow.Do(ctx, func(inner context.Context) error {
			database.AfterCommit(inner, func() { ran = true })
			return nil
		}); err != nil {
			return err
		}
		suite.False(ran)
		return errors.BadRequest("Rating out of range")
	})

	// Assert
	suite.True(errors.IsBadRequest(err))
	suite.False(ran)
}

func (suite *UnitOfWorkTestSuite) TestAfterCommit_RunsImmediatelyOutsideUnitOfWork() {
	// Arrange
	ran := false

	// Act
	database.AfterCommit(suite.ctx, func() { ran = true })

	// Assert
	suite.True(ran)
}

func TestUnitOfWorkTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkTestSuite))
}
