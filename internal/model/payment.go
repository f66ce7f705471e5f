package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatusPending is stored when the client does not send a status.
const PaymentStatusPending = "pending"

// Payment is an immutable ledger entry for one finalized checkout.
type Payment struct {
	ID            primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	Email         string               `json:"email" bson:"email"`
	Amount        Money                `json:"amount" bson:"amount"`
	Currency      string               `json:"currency" bson:"currency"`
	TransactionID string               `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	Status        string               `json:"status" bson:"status"`
	CartIDs       []primitive.ObjectID `json:"cartIds" bson:"cartIds"`
	MenuItemIDs   []primitive.ObjectID `json:"menuItemIds" bson:"menuItemIds"`
	Date          time.Time            `json:"date" bson:"date"`
}
