package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type ContactController struct {
	contacts *services.ContactService
}

func NewContactController(contacts *services.ContactService) *ContactController {
	return &ContactController{contacts: contacts}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// Submit → POST /contact
func (cc *ContactController) Submit(c *ctx.Context) {
	var in contactRequest
	if !c.BindJSON(&in) {
		return
	}

	_, err := cc.contacts.Submit(c.Context(), models.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Message submitted successfully!")
}

// Index → GET /api/admin/contact?limit= (ADMIN)
func (cc *ContactController) Index(c *ctx.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := cc.contacts.Recent(c.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
