// server/internal/models/facility.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Facility is a public location citizens rate by scanning its code.
type Facility struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"` // citizen-facing, unique, e.g. "WARD7-TB-A"
	Name      string             `bson:"name" json:"name"` // e.g. "Toilet Block A"
	Address   *string            `bson:"address" json:"address"`
	Lat       *float64           `bson:"lat" json:"lat"`
	Lng       *float64           `bson:"lng" json:"lng"`
	Ward      *string            `bson:"ward" json:"ward"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
