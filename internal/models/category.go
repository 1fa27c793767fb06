package models

import "time"

type Category struct {
	ID        string    `json:"id" dynamodbav:"id"`
	UserID    string    `json:"-" dynamodbav:"user_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Type      string    `json:"type" dynamodbav:"type"`
	Icon      string    `json:"icon,omitempty" dynamodbav:"icon,omitempty"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"-" dynamodbav:"updated_at"`
}

const CategorySKPrefix = "CAT#"

func (c *Category) GetPK() string {
	return "USERID#" + c.UserID
}

func (c *Category) GetSK() string {
	return CategorySKPrefix + c.ID
}
