package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartLine is one pending item in a customer's cart. Price is a snapshot
// taken when the line was added.
type CartLine struct {
	ID     primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Email  string             `json:"email" bson:"email"`
	MenuID primitive.ObjectID `json:"menuId" bson:"menuId"`
	Name   string             `json:"name" bson:"name"`
	Image  string             `json:"image" bson:"image"`
	Price  Money              `json:"price" bson:"price"`
}
