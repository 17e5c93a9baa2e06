package controllers

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/cache"
	"github.com/S-KABILAN/ECOMMERCE/pkg/ctx"
	"github.com/S-KABILAN/ECOMMERCE/pkg/factory"
	"github.com/S-KABILAN/ECOMMERCE/pkg/query"
)

// productsPerPage is the default page size for product listings.
const productsPerPage = 10

// productListCacheKey caches only the unfiltered first page; filtered
// queries always hit the database.
const productListCacheKey = "products:all"

// ProductController serves the product catalogue.
type ProductController struct {
	Products *factory.Model[models.Product]
}

func NewProductController(col factory.Collection) *ProductController {
	return &ProductController{Products: factory.NewModel[models.Product]("Product", col)}
}

// List returns products matching ?keyword / filter params, paginated.
//
//	GET /api/v1/products?keyword=widget&price[gte]=10&page=2&limit=2
func (pc *ProductController) List(c *ctx.Context) {
	f := query.New(c.R.URL.Query()).
		Search("name").
		Filter().
		Paginate(productsPerPage)
	if c.R.URL.RawQuery == "" {
		f.Cache(productListCacheKey, time.Minute)
	}

	products := []models.Product{}
	if err := f.Find(c.Context(), pc.Products.Collection(), &products); err != nil {
		c.Fail(apperror.Wrap(err))
		return
	}
	count, err := f.Count(c.Context(), pc.Products.Collection())
	if err != nil {
		c.Fail(apperror.Wrap(err))
		return
	}

	c.OK("", map[string]interface{}{
		"count":      count,
		"resPerPage": productsPerPage,
		"products":   products,
	})
}

type productInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Category    string  `json:"category" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0,lte=9999"`
}

// Create adds a product to the catalogue (admin only).
func (pc *ProductController) Create(c *ctx.Context) {
	var in productInput
	if !c.BindJSON(&in) {
		return
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
	}
	if identity := c.Identity(); identity != nil {
		if oid, err := primitive.ObjectIDFromHex(identity.IdentityID()); err == nil {
			product.User = oid
		}
	}

	if err := pc.Products.Create(c.Context(), &product); err != nil {
		c.Fail(err)
		return
	}
	_ = cache.Forget(productListCacheKey)
	c.Created("", map[string]interface{}{"product": product})
}

// Get returns one product by ID.
func (pc *ProductController) Get(c *ctx.Context) {
	product, err := pc.Products.FindByID(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"product": product})
}

type productUpdateInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
}

// Update patches the provided product fields. The merged document is
// re-validated before the write, so a patch can never corrupt the product.
func (pc *ProductController) Update(c *ctx.Context) {
	var in productUpdateInput
	if !c.BindJSON(&in) {
		return
	}

	patch := bson.M{}
	if in.Name != nil {
		patch["name"] = *in.Name
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Price != nil {
		patch["price"] = *in.Price
	}
	if in.Category != nil {
		patch["category"] = *in.Category
	}
	if in.Stock != nil {
		patch["stock"] = *in.Stock
	}
	if len(patch) == 0 {
		c.Fail(apperror.NewBadRequest("No updatable fields provided"))
		return
	}

	product, err := pc.Products.UpdateByID(c.Context(), c.Param("id"), patch)
	if err != nil {
		c.Fail(err)
		return
	}
	_ = cache.Forget(productListCacheKey)
	c.OK("", map[string]interface{}{"product": product})
}

// Delete removes a product. Deleting an unknown ID is a 404, never a silent
// success.
func (pc *ProductController) Delete(c *ctx.Context) {
	if _, err := pc.Products.DeleteByID(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	_ = cache.Forget(productListCacheKey)
	c.OK("Product is deleted", nil)
}
