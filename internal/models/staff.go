package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Staff is a cleaning worker that feedback tasks get assigned to.
type Staff struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Phone      *string            `bson:"phone" json:"phone"`
	EmployeeID *string            `bson:"employee_id" json:"employee_id"`
	Ward       *string            `bson:"ward" json:"ward"`
	IsActive   bool               `bson:"is_active" json:"is_active"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
