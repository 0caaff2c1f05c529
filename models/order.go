package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"

	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
)

type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User             primitive.ObjectID `bson:"user" json:"user"`
	Items            []OrderItem        `bson:"items" json:"items"`
	TotalAmount      float64            `bson:"totalAmount" json:"totalAmount"`
	DeliveryAddress  string             `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	PaymentReference string             `bson:"paymentReference,omitempty" json:"paymentReference,omitempty"`
	PaymentStatus    string             `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus      string             `bson:"orderStatus" json:"orderStatus"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
