package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shopspring/decimal"
)

// maxUploadBytes bounds the multipart form held in memory.
const maxUploadBytes = 10 << 20

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Index → GET /api/products
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.products.All(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Show → GET /api/products/{id}
func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	p, err := pc.products.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ByCategory → GET /api/products/category/{category}
func (pc *ProductController) ByCategory(c *ctx.Context) {
	products, err := pc.products.ByCategory(c.Context(), c.Param("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Search → GET /api/products/search?query=
func (pc *ProductController) Search(c *ctx.Context) {
	products, err := pc.products.Search(c.Context(), c.Query("query"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// upload is the multipart product form.
type upload struct {
	fields      map[string]string
	filename    string
	contentType string
	data        []byte
}

func readUpload(c *ctx.Context) (upload, bool) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxUploadBytes+1<<20)
	if err := c.R.ParseMultipartForm(maxUploadBytes); err != nil {
		c.Error(http.StatusBadRequest, "Invalid multipart form")
		return upload{}, false
	}

	u := upload{fields: map[string]string{}}
	for _, k := range []string{"name", "description", "price", "category"} {
		if vals, ok := c.R.MultipartForm.Value[k]; ok && len(vals) > 0 {
			u.fields[k] = vals[0]
		}
	}

	file, header, err := c.R.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return u, true
	}
	if err != nil {
		c.Error(http.StatusBadRequest, "Invalid multipart form")
		return upload{}, false
	}
	defer file.Close()

	u.data, err = io.ReadAll(file)
	if err != nil {
		c.Error(http.StatusBadRequest, "Failed to read uploaded file")
		return upload{}, false
	}
	u.filename = header.Filename
	u.contentType = header.Header.Get("Content-Type")
	return u, true
}

func parsePrice(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	return d, err == nil
}

// Upload → POST /api/products/upload (ADMIN, multipart)
func (pc *ProductController) Upload(c *ctx.Context) {
	u, ok := readUpload(c)
	if !ok {
		return
	}

	price, _ := parsePrice(u.fields["price"])
	p, err := pc.products.Create(c.Context(), services.ProductInput{
		Name:             u.fields["name"],
		Description:      u.fields["description"],
		Price:            price,
		Category:         u.fields["category"],
		ImageName:        u.filename,
		ImageContentType: u.contentType,
		Image:            u.data,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update → PUT /api/products/{id} (ADMIN, multipart; every field optional)
func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	u, ok := readUpload(c)
	if !ok {
		return
	}

	patch := services.ProductPatch{
		ImageName:        u.filename,
		ImageContentType: u.contentType,
		Image:            u.data,
	}
	if v, ok := u.fields["name"]; ok {
		patch.Name = &v
	}
	if v, ok := u.fields["description"]; ok {
		patch.Description = &v
	}
	if v, ok := u.fields["category"]; ok {
		patch.Category = &v
	}
	if v, ok := u.fields["price"]; ok {
		price, valid := parsePrice(v)
		if !valid {
			c.Error(http.StatusBadRequest, "Price must be greater than 0.")
			return
		}
		patch.Price = &price
	}

	p, err := pc.products.Update(c.Context(), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Destroy → DELETE /api/products/{id} (ADMIN)
func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := pc.products.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deleted successfully")
}
