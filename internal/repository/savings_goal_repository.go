package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/models"
)

type SavingsGoalRepository struct {
	table
	logger *logrus.Logger
}

func NewSavingsGoalRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *SavingsGoalRepository {
	return &SavingsGoalRepository{
		table:  table{client: client, tableName: tableName},
		logger: logger,
	}
}

func (r *SavingsGoalRepository) Create(ctx context.Context, goal *models.SavingsGoal) error {
	if err := r.putItem(ctx, goal.GetPK(), goal.GetSK(), goal, "attribute_not_exists(PK)"); err != nil {
		r.logger.WithError(err).Error("Failed to store savings goal in DynamoDB")
		return fmt.Errorf("failed to create savings goal: %w", err)
	}
	return nil
}

func (r *SavingsGoalRepository) GetByID(ctx context.Context, userID, id string) (*models.SavingsGoal, error) {
	lookup := &models.SavingsGoal{ID: id, UserID: userID}

	var goal models.SavingsGoal
	found, err := r.getItem(ctx, lookup.GetPK(), lookup.GetSK(), &goal)
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &goal, nil
}

func (r *SavingsGoalRepository) ListByUser(ctx context.Context, userID string) ([]models.SavingsGoal, error) {
	lookup := &models.SavingsGoal{UserID: userID}

	items, err := r.queryPrefix(ctx, lookup.GetPK(), models.SavingsGoalSKPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings goals: %w", err)
	}

	goals := make([]models.SavingsGoal, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &goals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal savings goals: %w", err)
	}

	return goals, nil
}

func (r *SavingsGoalRepository) Update(ctx context.Context, goal *models.SavingsGoal) error {
	err := r.putItem(ctx, goal.GetPK(), goal.GetSK(), goal, "attribute_exists(PK)")
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update savings goal: %w", err)
	}
	return nil
}

func (r *SavingsGoalRepository) Delete(ctx context.Context, userID, id string) error {
	lookup := &models.SavingsGoal{ID: id, UserID: userID}

	err := r.deleteItem(ctx, lookup.GetPK(), lookup.GetSK())
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete savings goal: %w", err)
	}
	return nil
}
