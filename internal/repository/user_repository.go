package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/models"
)

type UserRepository struct {
	table
	logger *logrus.Logger
}

func NewUserRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *UserRepository {
	return &UserRepository{
		table:  table{client: client, tableName: tableName},
		logger: logger,
	}
}

// Create stores a new user. The conditional put makes duplicate emails fail
// with ErrUserExists instead of silently overwriting.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.putItem(ctx, user.GetPK(), user.GetSK(), user, "attribute_not_exists(PK)")
	if errors.Is(err, errConditionFailed) {
		return ErrUserExists
	}
	if err != nil {
		r.logger.WithError(err).Error("Failed to store user in DynamoDB")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail returns nil without error when no user has the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	lookup := &models.User{Email: email}

	var user models.User
	found, err := r.getItem(ctx, lookup.GetPK(), lookup.GetSK(), &user)
	if err != nil {
		r.logger.WithError(err).Error("Failed to get user from DynamoDB")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &user, nil
}
