package handler

import (
	"net/http"
	"strconv"

	"github.com/DmitriyMikhalev/warehouses/internal/model"
	"github.com/DmitriyMikhalev/warehouses/pkg/database"
	"github.com/DmitriyMikhalev/warehouses/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// minArticleNumber is the lowest valid product article
const minArticleNumber = 10000

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name          string `json:"name" validate:"required"`
	ArticleNumber int64  `json:"article_number" validate:"required,gte=10000"`
}

// ListProducts handles retrieving all products with optional name filtering
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	db := database.GetDB()
	query := db

	if name := c.QueryParam("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}

	var products []model.Product
	result := query.Order("id DESC").Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by ID
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var product model.Product
	result := database.GetDB().First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.ArticleNumber < minArticleNumber {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "article_number must be at least " + strconv.Itoa(minArticleNumber),
		})
	}

	// Check if product with article number already exists
	var count int64
	database.GetDB().Model(&model.Product{}).Where("article_number = ?", req.ArticleNumber).Count(&count)
	if count > 0 {
		log.Warn("Product with this article number already exists",
			zap.Int64("article_number", req.ArticleNumber))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Product with this article number already exists",
		})
	}

	product := model.Product{
		Name:          req.Name,
		ArticleNumber: req.ArticleNumber,
	}

	result := database.GetDB().Create(&product)
	if result.Error != nil {
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.Int64("article_number", req.ArticleNumber),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	log.Info("Product created",
		zap.String("product_id", strconv.FormatUint(uint64(product.ID), 10)),
		zap.String("name", product.Name),
		zap.Int64("article_number", product.ArticleNumber))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var product model.Product
	result := database.GetDB().First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found for update", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	if req.ArticleNumber != product.ArticleNumber {
		var count int64
		database.GetDB().Model(&model.Product{}).
			Where("article_number = ? AND id != ?", req.ArticleNumber, id).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Product with this article number already exists",
			})
		}
	}

	product.Name = req.Name
	product.ArticleNumber = req.ArticleNumber

	result = database.GetDB().Save(&product)
	if result.Error != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	log.Info("Product updated", zap.String("product_id", id))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles deleting a product. Ledger rows and commitment lines
// referencing it are removed by the cascade.
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete product",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	log.Info("Product deleted", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
	})
}
