package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentmart/database"
	"studentmart/logger"
	"studentmart/models"
)

func GetAllUsers(c *gin.Context) {
	filter := bson.M{}

	if role := c.Query("role"); role != "" {
		filter["role"] = role
	}
	if isActive := c.Query("isActive"); isActive != "" {
		filter["isActive"] = isActive == "true"
	}
	if search := c.Query("search"); search != "" {
		filter["$or"] = bson.A{
			bson.M{"fullName": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.Users.Find(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching users"})
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(users),
		"users": users,
	})
}

func GetUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching user"})
		return
	}

	// On vendor profiles include a slice of their active listings.
	products := []models.Product{}
	if user.Role == models.RoleVendor {
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(10)
		cursor, err := database.Products.Find(ctx, bson.M{"vendor": user.ID, "isActive": true}, opts)
		if err == nil {
			defer cursor.Close(ctx)
			if err := cursor.All(ctx, &products); err != nil {
				logger.Log.Warnw("decode vendor products failed", "vendorId", user.ID.Hex(), "err", err)
			}
		} else {
			logger.Log.Warnw("fetch vendor products failed", "vendorId", user.ID.Hex(), "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"products": products,
	})
}

type AdminUpdateUserRequest struct {
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"`
	University   string `json:"university"`
	Role         string `json:"role" binding:"omitempty,oneof=student vendor admin"`
	IsVerified   *bool  `json:"isVerified"`
	ProfileImage string `json:"profileImage"`
}

func UpdateUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.FullName != "" {
		set["fullName"] = req.FullName
	}
	if req.PhoneNumber != "" {
		set["phoneNumber"] = req.PhoneNumber
	}
	if req.University != "" {
		set["university"] = req.University
	}
	if req.Role != "" {
		set["role"] = req.Role
	}
	if req.IsVerified != nil {
		set["isVerified"] = *req.IsVerified
	}
	if req.ProfileImage != "" {
		set["profileImage"] = req.ProfileImage
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user models.User
	err = database.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func setUserActive(c *gin.Context, active bool, message string) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user models.User
	err = database.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}

func DeactivateUser(c *gin.Context) {
	setUserActive(c, false, "User deactivated successfully")
}

func ActivateUser(c *gin.Context) {
	setUserActive(c, true, "User activated successfully")
}

func DeleteUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching user"})
		return
	}

	// A vendor's listings go with the account.
	if user.Role == models.RoleVendor {
		if _, err := database.Products.DeleteMany(ctx, bson.M{"vendor": user.ID}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting vendor products"})
			return
		}
	}

	if _, err := database.Users.DeleteOne(ctx, bson.M{"_id": user.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func GetStatistics(c *gin.Context) {
	ctx, cancel := dbCtx()
	defer cancel()

	totalUsers, err := database.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching statistics"})
		return
	}
	totalStudents, _ := database.Users.CountDocuments(ctx, bson.M{"role": models.RoleStudent})
	totalVendors, _ := database.Users.CountDocuments(ctx, bson.M{"role": models.RoleVendor})
	totalProducts, _ := database.Products.CountDocuments(ctx, bson.M{})
	activeProducts, _ := database.Products.CountDocuments(ctx, bson.M{"isActive": true})

	c.JSON(http.StatusOK, gin.H{
		"statistics": gin.H{
			"totalUsers":     totalUsers,
			"totalStudents":  totalStudents,
			"totalVendors":   totalVendors,
			"totalProducts":  totalProducts,
			"activeProducts": activeProducts,
		},
	})
}
