package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentmart/database"
	"studentmart/models"
)

func validCategory(category string) bool {
	for _, c := range models.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func validCondition(condition string) bool {
	for _, c := range models.Conditions {
		if c == condition {
			return true
		}
	}
	return false
}

func GetAllProducts(c *gin.Context) {
	filter := bson.M{"isActive": true}

	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if condition := c.Query("condition"); condition != "" {
		filter["condition"] = condition
	}
	if search := c.Query("search"); search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"tags": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	price := bson.M{}
	if min := c.Query("minPrice"); min != "" {
		if v, err := strconv.ParseFloat(min, 64); err == nil {
			price["$gte"] = v
		}
	}
	if max := c.Query("maxPrice"); max != "" {
		if v, err := strconv.ParseFloat(max, 64); err == nil {
			price["$lte"] = v
		}
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	switch c.Query("sort") {
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	case "rating":
		sort = bson.D{{Key: "rating", Value: -1}}
	}

	ctx, cancel := dbCtx()
	defer cancel()

	total, err := database.Products.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
		return
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := database.Products.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"total":    total,
		"page":     page,
		"products": products,
	})
}

func GetProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var product models.Product
	err = database.Products.FindOneAndUpdate(ctx,
		bson.M{"_id": productID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

type ProductRequest struct {
	Title         string                  `json:"title" binding:"required,max=100"`
	Description   string                  `json:"description" binding:"required,max=2000"`
	Price         *float64                `json:"price" binding:"required,gte=0"`
	Category      string                  `json:"category" binding:"required"`
	Condition     string                  `json:"condition" binding:"required"`
	Images        []string                `json:"images"`
	StockQuantity *int                    `json:"stockQuantity" binding:"omitempty,gte=0"`
	Location      *models.ProductLocation `json:"location"`
	Tags          []string                `json:"tags"`
}

func CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	if !validCondition(req.Condition) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid condition"})
		return
	}

	stock := 1
	if req.StockQuantity != nil {
		stock = *req.StockQuantity
	}

	now := time.Now().UTC()
	product := models.Product{
		ID:            primitive.NewObjectID(),
		Title:         req.Title,
		Description:   req.Description,
		Price:         *req.Price,
		Category:      req.Category,
		Condition:     req.Condition,
		Images:        req.Images,
		Vendor:        userID,
		StockQuantity: stock,
		Location:      req.Location,
		Tags:          req.Tags,
		Reviews:       []models.Review{},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := database.Products.InsertOne(ctx, product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// loadOwnedProduct fetches a product and checks the caller may modify it
// (owning vendor or admin). Writes the error response itself.
func loadOwnedProduct(c *gin.Context, userID primitive.ObjectID) (*models.Product, bool) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return nil, false
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var product models.Product
	err = database.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching product"})
		return nil, false
	}

	if product.Vendor != userID && c.GetString("role") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		return nil, false
	}
	return &product, true
}

func UpdateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	product, ok := loadOwnedProduct(c, userID)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	if !validCondition(req.Condition) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid condition"})
		return
	}

	set := bson.M{
		"title":       req.Title,
		"description": req.Description,
		"price":       *req.Price,
		"category":    req.Category,
		"condition":   req.Condition,
		"images":      req.Images,
		"location":    req.Location,
		"tags":        req.Tags,
		"updatedAt":   time.Now().UTC(),
	}
	if req.StockQuantity != nil {
		set["stockQuantity"] = *req.StockQuantity
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var updated models.Product
	err := database.Products.FindOneAndUpdate(ctx,
		bson.M{"_id": product.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": updated})
}

func DeleteProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	product, ok := loadOwnedProduct(c, userID)
	if !ok {
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := database.Products.DeleteOne(ctx, bson.M{"_id": product.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func GetMyProducts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := database.Products.Find(ctx, bson.M{"vendor": userID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func AddReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var product models.Product
	err = database.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching product"})
		return
	}

	for _, r := range product.Reviews {
		if r.User == userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this product"})
			return
		}
	}

	product.Reviews = append(product.Reviews, models.Review{
		User:      userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	})

	_, err = database.Products.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{
			"reviews":   product.Reviews,
			"rating":    product.AverageRating(),
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review added", "rating": product.AverageRating()})
}
