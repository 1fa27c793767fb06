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

type BudgetRepository struct {
	table
	logger *logrus.Logger
}

func NewBudgetRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *BudgetRepository {
	return &BudgetRepository{
		table:  table{client: client, tableName: tableName},
		logger: logger,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	if err := r.putItem(ctx, budget.GetPK(), budget.GetSK(), budget, "attribute_not_exists(PK)"); err != nil {
		r.logger.WithError(err).Error("Failed to store budget in DynamoDB")
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, userID, id string) (*models.Budget, error) {
	lookup := &models.Budget{ID: id, UserID: userID}

	var budget models.Budget
	found, err := r.getItem(ctx, lookup.GetPK(), lookup.GetSK(), &budget)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &budget, nil
}

func (r *BudgetRepository) ListByUser(ctx context.Context, userID string) ([]models.Budget, error) {
	lookup := &models.Budget{UserID: userID}

	items, err := r.queryPrefix(ctx, lookup.GetPK(), models.BudgetSKPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	budgets := make([]models.Budget, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &budgets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal budgets: %w", err)
	}

	return budgets, nil
}

func (r *BudgetRepository) Update(ctx context.Context, budget *models.Budget) error {
	err := r.putItem(ctx, budget.GetPK(), budget.GetSK(), budget, "attribute_exists(PK)")
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID, id string) error {
	lookup := &models.Budget{ID: id, UserID: userID}

	err := r.deleteItem(ctx, lookup.GetPK(), lookup.GetSK())
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}
