package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStudent = "student"
	RoleVendor  = "vendor"
	RoleAdmin   = "admin"
)

const FallbackAvatar = "https://via.placeholder.com/150"

type Address struct {
	Street string `bson:"street,omitempty" json:"street,omitempty"`
	City   string `bson:"city,omitempty" json:"city,omitempty"`
	State  string `bson:"state,omitempty" json:"state,omitempty"`
}

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	Role         string               `bson:"role" json:"role"`
	PhoneNumber  string               `bson:"phoneNumber" json:"phoneNumber"`
	University   string               `bson:"university" json:"university"`
	StudentID    string               `bson:"studentId,omitempty" json:"studentId,omitempty"`
	Address      *Address             `bson:"address,omitempty" json:"address,omitempty"`
	ProfileImage string               `bson:"profileImage" json:"profileImage"`
	IsVerified   bool                 `bson:"isVerified" json:"isVerified"`
	Rating       float64              `bson:"rating" json:"rating"`
	TotalRatings int                  `bson:"totalRatings" json:"totalRatings"`
	IsActive     bool                 `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time           `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	Wishlist     []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// UserSnapshot is the display slice of a user embedded in messages,
// conversations and wishlist entries.
type UserSnapshot struct {
	ID           primitive.ObjectID `json:"id"`
	FullName     string             `json:"fullName"`
	ProfileImage string             `json:"profileImage"`
}

func (u *User) Snapshot() UserSnapshot {
	image := u.ProfileImage
	if image == "" {
		image = FallbackAvatar
	}
	return UserSnapshot{
		ID:           u.ID,
		FullName:     u.FullName,
		ProfileImage: image,
	}
}
