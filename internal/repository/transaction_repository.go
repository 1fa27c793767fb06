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

type TransactionRepository struct {
	table
	logger *logrus.Logger
}

func NewTransactionRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *TransactionRepository {
	return &TransactionRepository{
		table:  table{client: client, tableName: tableName},
		logger: logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if err := r.putItem(ctx, txn.GetPK(), txn.GetSK(), txn, "attribute_not_exists(PK)"); err != nil {
		r.logger.WithError(err).Error("Failed to store transaction in DynamoDB")
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id string) (*models.Transaction, error) {
	lookup := &models.Transaction{ID: id, UserID: userID}

	var txn models.Transaction
	found, err := r.getItem(ctx, lookup.GetPK(), lookup.GetSK(), &txn)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &txn, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	lookup := &models.Transaction{UserID: userID}

	items, err := r.queryPrefix(ctx, lookup.GetPK(), models.TransactionSKPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}

	return transactions, nil
}

func (r *TransactionRepository) Update(ctx context.Context, txn *models.Transaction) error {
	err := r.putItem(ctx, txn.GetPK(), txn.GetSK(), txn, "attribute_exists(PK)")
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	lookup := &models.Transaction{ID: id, UserID: userID}

	err := r.deleteItem(ctx, lookup.GetPK(), lookup.GetSK())
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}
