package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var Categories = []string{
	"Textbooks",
	"Electronics",
	"Furniture",
	"Clothing",
	"Stationery",
	"Sports Equipment",
	"Kitchen Items",
	"Accommodation",
	"Services",
	"Other",
}

var Conditions = []string{"New", "Like New", "Good", "Fair", "Poor"}

type Review struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type ProductLocation struct {
	University string `bson:"university,omitempty" json:"university,omitempty"`
	Campus     string `bson:"campus,omitempty" json:"campus,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	Category      string             `bson:"category" json:"category"`
	Condition     string             `bson:"condition" json:"condition"`
	Images        []string           `bson:"images" json:"images"`
	Vendor        primitive.ObjectID `bson:"vendor" json:"vendor"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	Location      *ProductLocation   `bson:"location,omitempty" json:"location,omitempty"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Views         int64              `bson:"views" json:"views"`
	Rating        float64            `bson:"rating" json:"rating"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	IsFeatured    bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductSnapshot is the display slice of a product embedded in messages
// that reference a listing.
type ProductSnapshot struct {
	ID     primitive.ObjectID `json:"id"`
	Title  string             `json:"title"`
	Price  float64            `json:"price"`
	Images []string           `json:"images"`
}

func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Images: p.Images,
	}
}

// AverageRating recomputes the product rating from its reviews.
func (p *Product) AverageRating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.Reviews))
}
