package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
	"github.com/Alex-Easy/diploma-try-2/pkg/common"
)

func registerContactRoutes() {
	webserver.ApiGET("/user/contact", listContacts)
	webserver.ApiPOST("/user/contact", createContact)
	webserver.ApiGET("/user/contact/:id", getContact)
	webserver.ApiPUT("/user/contact/:id", updateContact)
	webserver.ApiDELETE("/user/contact/:id", deleteContact)
}

type contactPayload struct {
	City      string `json:"city" validate:"required"`
	Street    string `json:"street" validate:"required"`
	House     string `json:"house" validate:"required"`
	Structure string `json:"structure"`
	Building  string `json:"building"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone" validate:"required"`
}

func listContacts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	uid := webserver.CurrentUserID(c)

	base := GetDB(c).Model(&domain.Contact{}).Where("user_id = ?", uid)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contacts", nil)
	}

	var contacts []domain.Contact
	if err := base.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&contacts).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contacts", nil)
	}
	return paged(c, contacts, total, page, pageSize)
}

func createContact(c echo.Context) error {
	var payload contactPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse contact data", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	contact := domain.Contact{
		ID:        common.UUIDint64(),
		UserID:    webserver.CurrentUserID(c),
		City:      payload.City,
		Street:    payload.Street,
		House:     payload.House,
		Structure: payload.Structure,
		Building:  payload.Building,
		Apartment: payload.Apartment,
		Phone:     payload.Phone,
	}
	if err := GetDB(c).Create(&contact).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create contact", nil)
	}
	return created(c, contact)
}

// loadOwnContact resolves :id and enforces ownership. The bool result tells
// the caller a response was already written.
func loadOwnContact(c echo.Context) (*domain.Contact, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		_ = fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID", nil)
		return nil, false
	}

	var contact domain.Contact
	err = GetDB(c).First(&contact, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = fail(c, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found", nil)
		return nil, false
	} else if err != nil {
		_ = fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contact", nil)
		return nil, false
	}

	if contact.UserID != webserver.CurrentUserID(c) {
		_ = fail(c, http.StatusForbidden, "FORBIDDEN", "You cannot access another user's contact", nil)
		return nil, false
	}
	return &contact, true
}

func getContact(c echo.Context) error {
	contact, found := loadOwnContact(c)
	if !found {
		return nil
	}
	return ok(c, contact)
}

func updateContact(c echo.Context) error {
	contact, found := loadOwnContact(c)
	if !found {
		return nil
	}

	var payload contactPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse contact data", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return failValidation(c, err)
	}

	contact.City = payload.City
	contact.Street = payload.Street
	contact.House = payload.House
	contact.Structure = payload.Structure
	contact.Building = payload.Building
	contact.Apartment = payload.Apartment
	contact.Phone = payload.Phone

	if err := GetDB(c).Save(contact).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update contact", nil)
	}
	return ok(c, contact)
}

func deleteContact(c echo.Context) error {
	contact, found := loadOwnContact(c)
	if !found {
		return nil
	}
	if err := GetDB(c).Delete(&domain.Contact{}, contact.ID).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete contact", nil)
	}
	return ok(c, map[string]interface{}{"id": contact.ID})
}
