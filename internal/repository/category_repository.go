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

type CategoryRepository struct {
	table
	logger *logrus.Logger
}

func NewCategoryRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *CategoryRepository {
	return &CategoryRepository{
		table:  table{client: client, tableName: tableName},
		logger: logger,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.putItem(ctx, category.GetPK(), category.GetSK(), category, "attribute_not_exists(PK)"); err != nil {
		r.logger.WithError(err).Error("Failed to store category in DynamoDB")
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID, id string) (*models.Category, error) {
	lookup := &models.Category{ID: id, UserID: userID}

	var category models.Category
	found, err := r.getItem(ctx, lookup.GetPK(), lookup.GetSK(), &category)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &category, nil
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	lookup := &models.Category{UserID: userID}

	items, err := r.queryPrefix(ctx, lookup.GetPK(), models.CategorySKPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]models.Category, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	err := r.putItem(ctx, category.GetPK(), category.GetSK(), category, "attribute_exists(PK)")
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID, id string) error {
	lookup := &models.Category{ID: id, UserID: userID}

	err := r.deleteItem(ctx, lookup.GetPK(), lookup.GetSK())
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
