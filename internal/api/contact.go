package api

import (
	"net/http" // HTTP status codes

	"learnshop/internal/domain" // Importing domain models
	"learnshop/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// ContactRequest is the public contact form
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email,max=191"`
	Phone   string `json:"phone" binding:"omitempty,max=32"`
	Subject string `json:"subject" binding:"required,min=3,max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// ContactStatusRequest is the body of PATCH /api/contact/:id/status
type ContactStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new read replied archived"`
}

// SubmitContactHandler records a contact form submission
func SubmitContactHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ContactRequest
		if !bindJSON(c, &req) {
			return
		}
		contact := domain.Contact{
			Name:      utils.SanitizeLine(req.Name),
			Email:     utils.SanitizeLine(req.Email),
			Phone:     utils.SanitizeLine(req.Phone),
			Subject:   utils.SanitizeLine(req.Subject),
			Message:   utils.SanitizeText(req.Message),
			Status:    domain.ContactNew,
			IPAddress: c.ClientIP(), // Client IP
		}
		// Markup-only input is empty after sanitizing
		var errs []utils.FieldError
		if contact.Name == "" {
			errs = append(errs, utils.FieldError{Field: "name", Message: "is required"})
		}
		if contact.Subject == "" {
			errs = append(errs, utils.FieldError{Field: "subject", Message: "is required"})
		}
		if contact.Message == "" {
			errs = append(errs, utils.FieldError{Field: "message", Message: "is required"})
		}
		if len(errs) > 0 {
			utils.ValidationFailed(c, errs)
			return
		}
		if err := db.WithContext(c.Request.Context()).Create(&contact).Error; err != nil {
			serverError(c, "save contact", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"contact_id": contact.ID,        // Submission ID
			"ip":         contact.IPAddress, // Client IP
		}).Info("Contact form submitted")
		utils.OK(c, http.StatusCreated, gin.H{"id": contact.ID}, "Thank you, we will get back to you soon")
	}
}

// ListContactsHandler returns a page of submissions for admins
func ListContactsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePagination(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.Contact{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if search := c.Query("search"); search != "" {
			clause, args := utils.LikeClause(search, "name", "email", "subject", "message")
			query = query.Where(clause, args...)
		}
		var contacts []domain.Contact
		total, err := findPage(query, page, "created_at desc, id desc", &contacts)
		if err != nil {
			serverError(c, "list contacts", err)
			return
		}
		utils.Paginated(c, contacts, page.Result(total))
	}
}

// GetContactHandler returns one submission and marks it read
func GetContactHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		contact, ok := loadContact(c, db)
		if !ok {
			return
		}
		if contact.Status == domain.ContactNew {
			if err := db.WithContext(c.Request.Context()).Model(&contact).Update("status", domain.ContactRead).Error; err != nil {
				serverError(c, "mark contact read", err)
				return
			}
			contact.Status = domain.ContactRead
		}
		utils.OK(c, http.StatusOK, contact, "")
	}
}

// UpdateContactStatusHandler sets the triage status of a submission
func UpdateContactStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		contact, ok := loadContact(c, db)
		if !ok {
			return
		}
		var req ContactStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(&contact).Update("status", req.Status).Error; err != nil {
			serverError(c, "update contact status", err)
			return
		}
		contact.Status = req.Status
		utils.OK(c, http.StatusOK, contact, "Status updated")
	}
}

// DeleteContactHandler archives a submission, or removes it with ?hard=true
func DeleteContactHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		contact, ok := loadContact(c, db)
		if !ok {
			return
		}
		db := db.WithContext(c.Request.Context())
		if c.Query("hard") == "true" {
			if err := db.Delete(&contact).Error; err != nil {
				serverError(c, "delete contact", err)
				return
			}
		} else if err := db.Model(&contact).Update("status", domain.ContactArchived).Error; err != nil {
			serverError(c, "archive contact", err)
			return
		}
		utils.OK(c, http.StatusOK, nil, "Contact deleted")
	}
}

func loadContact(c *gin.Context, db *gorm.DB) (domain.Contact, bool) {
	var contact domain.Contact
	id, ok := pathID(c, "Contact")
	if !ok {
		return contact, false
	}
	if err := db.WithContext(c.Request.Context()).First(&contact, id).Error; err != nil {
		if isNotFound(err) {
			utils.Fail(c, http.StatusNotFound, "Contact not found")
			return contact, false
		}
		serverError(c, "load contact", err)
		return contact, false
	}
	return contact, true
}
