package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// MenuItem is a dish in the catalog; statistics join payments against it.
type MenuItem struct {
	ID       primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Recipe   string             `json:"recipe" bson:"recipe"`
	Image    string             `json:"image" bson:"image"`
	Category string             `json:"category" bson:"category"`
	Price    Money              `json:"price" bson:"price"`
}
