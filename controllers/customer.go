package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"customerhub-backend/models"
	"customerhub-backend/services"
	"customerhub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CustomerHistoryInput is one entry of customer_histories. Without an id, or
// with an id the customer does not own (zero and negative ids included), a
// new history is created.
type CustomerHistoryInput struct {
	ID      *int64 `json:"id"`
	History string `json:"history" binding:"required,max=100"`
}

// CustomerInput defines the expected JSON structure for creating and updating a customer
type CustomerInput struct {
	ID                *uint                   `json:"id"` // accepted but ignored
	Name              *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Age               *int                    `json:"age" binding:"required"`
	CustomerHistories *[]CustomerHistoryInput `json:"customer_histories" binding:"omitempty,dive"`
}

func (in CustomerInput) data() services.CustomerData {
	d := services.CustomerData{Age: *in.Age}
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.CustomerHistories != nil {
		d.Histories = make([]services.HistoryItem, 0, len(*in.CustomerHistories))
		for _, h := range *in.CustomerHistories {
			item := services.HistoryItem{History: h.History}
			if h.ID != nil && *h.ID > 0 {
				id := uint(*h.ID)
				item.ID = &id
			}
			d.Histories = append(d.Histories, item)
		}
	}
	return d
}

type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	CreateCustomer(ctx context.Context, in services.CustomerData) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, in services.CustomerData) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error
}

type CustomerController struct {
	store CustomerStore
	log   logrus.FieldLogger
}

func NewCustomerController(store CustomerStore, log logrus.FieldLogger) *CustomerController {
	return &CustomerController{store: store, log: log}
}

// GetCustomers lists every customer with its histories
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	customers, err := cc.store.ListCustomers(c.Request.Context())
	if err != nil {
		cc.serverError(c, err, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

// CreateCustomer creates a customer and its histories
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var input CustomerInput
	if errs := utils.BindJSON(c, &input); errs != nil {
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	if _, err := cc.store.CreateCustomer(c.Request.Context(), input.data()); err != nil {
		cc.serverError(c, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data has been successfully created"})
}

// GetCustomer retrieves a specific customer by ID
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	customer, ok := cc.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// UpdateCustomer overwrites the customer and reconciles its histories
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	customer, ok := cc.lookup(c)
	if !ok {
		return
	}

	var input CustomerInput
	if errs := utils.BindJSON(c, &input); errs != nil {
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	if _, err := cc.store.UpdateCustomer(c.Request.Context(), customer.ID, input.data()); err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		cc.serverError(c, err, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data has been successfully saved."})
}

// DeleteCustomer removes a customer and all of its histories
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if err := cc.store.DeleteCustomer(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		cc.serverError(c, err, "Failed to delete customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data has been successfully removed."})
}

// lookup loads the customer named by the :id param. Unknown and malformed
// ids both answer 404 without a body.
func (cc *CustomerController) lookup(c *gin.Context) (*models.Customer, bool) {
	id, ok := parseID(c)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}

	customer, err := cc.store.GetCustomer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
		} else {
			cc.serverError(c, err, "Database error")
		}
		return nil, false
	}
	return customer, true
}

func (cc *CustomerController) serverError(c *gin.Context, err error, message string) {
	cc.log.WithError(err).WithFields(logrus.Fields{
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("requestId"),
	}).Error(message)
	_ = c.Error(err)
	utils.RespondWithError(c, http.StatusInternalServerError, message)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
