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

type CreditCardRepository struct {
	table
	logger *logrus.Logger
}

func NewCreditCardRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *CreditCardRepository {
	return &CreditCardRepository{
		table:  table{client: client, tableName: tableName},
		logger: logger,
	}
}

func (r *CreditCardRepository) Create(ctx context.Context, card *models.CreditCard) error {
	if err := r.putItem(ctx, card.GetPK(), card.GetSK(), card, "attribute_not_exists(PK)"); err != nil {
		r.logger.WithError(err).Error("Failed to store credit card in DynamoDB")
		return fmt.Errorf("failed to create credit card: %w", err)
	}
	return nil
}

func (r *CreditCardRepository) GetByID(ctx context.Context, userID, id string) (*models.CreditCard, error) {
	lookup := &models.CreditCard{ID: id, UserID: userID}

	var card models.CreditCard
	found, err := r.getItem(ctx, lookup.GetPK(), lookup.GetSK(), &card)
	if err != nil {
		return nil, fmt.Errorf("failed to get credit card: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	return &card, nil
}

func (r *CreditCardRepository) ListByUser(ctx context.Context, userID string) ([]models.CreditCard, error) {
	lookup := &models.CreditCard{UserID: userID}

	items, err := r.queryPrefix(ctx, lookup.GetPK(), models.CreditCardSKPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}

	cards := make([]models.CreditCard, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credit cards: %w", err)
	}

	return cards, nil
}

func (r *CreditCardRepository) Update(ctx context.Context, card *models.CreditCard) error {
	err := r.putItem(ctx, card.GetPK(), card.GetSK(), card, "attribute_exists(PK)")
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update credit card: %w", err)
	}
	return nil
}

func (r *CreditCardRepository) Delete(ctx context.Context, userID, id string) error {
	lookup := &models.CreditCard{ID: id, UserID: userID}

	err := r.deleteItem(ctx, lookup.GetPK(), lookup.GetSK())
	if errors.Is(err, errConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credit card: %w", err)
	}
	return nil
}
