package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentmart/database"
	"studentmart/logger"
	"studentmart/models"
)

// kobo converts a naira amount to Paystack's integer subunit. Rounding, not
// truncating: ₦19.99 is 1999 kobo, not 1998.
func kobo(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type CreateOrderRequest struct {
	Items []struct {
		Product  string `json:"product" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
}

func CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var total float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		err = database.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Product %s not found", item.Product)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating order"})
			return
		}

		if product.StockQuantity < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Insufficient stock for %s", product.Title)})
			return
		}

		items = append(items, models.OrderItem{
			Product:  product.ID,
			Quantity: item.Quantity,
			Price:    product.Price,
		})
		total += product.Price * float64(item.Quantity)
	}

	order := models.Order{
		ID:              primitive.NewObjectID(),
		User:            userID,
		Items:           items,
		TotalAmount:     total,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderPending,
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := database.Orders.InsertOne(ctx, order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func InitializePayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var order models.Order
	err = database.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching order"})
		return
	}

	if order.User != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	var user models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching user"})
		return
	}

	reference := fmt.Sprintf("ORDER-%s-%s", order.ID.Hex(), uuid.NewString())
	init, err := paystack.InitializeTransaction(ctx,
		user.Email,
		kobo(order.TotalAmount),
		reference,
		clientURL+"/order-success",
		map[string]interface{}{
			"order_id": order.ID.Hex(),
			"user_id":  userID.Hex(),
		},
	)
	if err != nil {
		logger.Log.Errorw("paystack initialize failed", "orderId", order.ID.Hex(), "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error initializing payment"})
		return
	}

	_, err = database.Orders.UpdateOne(ctx,
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{"paymentReference": init.Reference}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving payment reference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": init})
}

func VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")

	ctx, cancel := dbCtx()
	defer cancel()

	status, err := paystack.VerifyTransaction(ctx, reference)
	if err != nil {
		logger.Log.Errorw("paystack verify failed", "reference", reference, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error verifying payment"})
		return
	}
	if status != "success" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
		return
	}

	var order models.Order
	err = database.Orders.FindOneAndUpdate(ctx,
		bson.M{"paymentReference": reference},
		bson.M{"$set": bson.M{
			"paymentStatus": models.PaymentPaid,
			"orderStatus":   models.OrderConfirmed,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating order"})
		return
	}

	for _, item := range order.Items {
		_, err := database.Products.UpdateOne(ctx,
			bson.M{"_id": item.Product},
			bson.M{"$inc": bson.M{"stockQuantity": -item.Quantity}},
		)
		if err != nil {
			logger.Log.Warnw("stock decrement failed", "productId", item.Product.Hex(), "err", err)
		}
	}

	if mailer.Enabled() {
		go func(order models.Order) {
			var user models.User
			ctx, cancel := dbCtx()
			defer cancel()
			if err := database.Users.FindOne(ctx, bson.M{"_id": order.User}).Decode(&user); err != nil {
				return
			}
			if err := mailer.SendOrderConfirmation(user.Email, user.FullName, order.ID.Hex(), order.TotalAmount); err != nil {
				logger.Log.Warnw("order confirmation email failed", "orderId", order.ID.Hex(), "err", err)
			}
		}(order)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verified successfully",
		"order":   order,
	})
}

func GetMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := database.Orders.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

func GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var order models.Order
	err = database.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching order"})
		return
	}

	if order.User != userID && c.GetString("role") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
