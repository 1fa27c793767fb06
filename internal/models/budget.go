package models

import "time"

type Budget struct {
	ID         string    `json:"id" dynamodbav:"id"`
	UserID     string    `json:"-" dynamodbav:"user_id"`
	CategoryID string    `json:"categoryId" dynamodbav:"category_id"`
	Amount     float64   `json:"amount" dynamodbav:"amount"`
	Month      string    `json:"month" dynamodbav:"month"`
	CreatedAt  time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"-" dynamodbav:"updated_at"`
}

const BudgetSKPrefix = "BUDGET#"

func (b *Budget) GetPK() string {
	return "USERID#" + b.UserID
}

func (b *Budget) GetSK() string {
	return BudgetSKPrefix + b.ID
}
