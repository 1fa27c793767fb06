package models

import "time"

type SavingsGoal struct {
	ID            string    `json:"id" dynamodbav:"id"`
	UserID        string    `json:"-" dynamodbav:"user_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	TargetAmount  float64   `json:"targetAmount" dynamodbav:"target_amount"`
	CurrentAmount float64   `json:"currentAmount" dynamodbav:"current_amount"`
	TargetDate    time.Time `json:"targetDate,omitempty" dynamodbav:"target_date,omitempty"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"-" dynamodbav:"updated_at"`
}

const SavingsGoalSKPrefix = "GOAL#"

func (g *SavingsGoal) GetPK() string {
	return "USERID#" + g.UserID
}

func (g *SavingsGoal) GetSK() string {
	return SavingsGoalSKPrefix + g.ID
}
