package models

import "time"

type CreditCard struct {
	ID          string    `json:"id" dynamodbav:"id"`
	UserID      string    `json:"-" dynamodbav:"user_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	CreditLimit float64   `json:"creditLimit" dynamodbav:"credit_limit"`
	Balance     float64   `json:"balance" dynamodbav:"balance"`
	DueDay      int       `json:"dueDay,omitempty" dynamodbav:"due_day,omitempty"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"-" dynamodbav:"updated_at"`
}

const CreditCardSKPrefix = "CARD#"

func (c *CreditCard) GetPK() string {
	return "USERID#" + c.UserID
}

func (c *CreditCard) GetSK() string {
	return CreditCardSKPrefix + c.ID
}
