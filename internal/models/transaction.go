package models

import "time"

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

type Transaction struct {
	ID          string    `json:"id" dynamodbav:"id"`
	UserID      string    `json:"-" dynamodbav:"user_id"`
	Type        string    `json:"type" dynamodbav:"type"`
	Amount      float64   `json:"amount" dynamodbav:"amount"`
	CategoryID  string    `json:"categoryId,omitempty" dynamodbav:"category_id,omitempty"`
	Description string    `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Date        time.Time `json:"date" dynamodbav:"date"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"-" dynamodbav:"updated_at"`
}

const TransactionSKPrefix = "TXN#"

func (t *Transaction) GetPK() string {
	return "USERID#" + t.UserID
}

func (t *Transaction) GetSK() string {
	return TransactionSKPrefix + t.ID
}
