package services

import (
	"context"
	"errors"
	"fmt"

	"customerhub-backend/metrics"
	"customerhub-backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerData carries the writable fields of a customer.
//
// A nil Histories leaves the customer's histories untouched on update. A
// non-nil empty slice is reconciled like any other list.
type CustomerData struct {
	Name      string
	Age       int
	Histories []HistoryItem
}

type CustomerService struct {
	db        *gorm.DB
	log       logrus.FieldLogger
	pruneMode PruneMode
}

func NewCustomerService(db *gorm.DB, log logrus.FieldLogger, mode PruneMode) *CustomerService {
	if mode == "" {
		mode = PruneLengthGated
	}
	return &CustomerService{
		db:        db,
		log:       log.WithField("service", "customers"),
		pruneMode: mode,
	}
}

func historiesByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// ListCustomers returns every customer with its histories, ordered by id.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).
		Preload("CustomerHistories", historiesByID).
		Order("id").
		Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	for i := range customers {
		normalize(&customers[i])
	}
	return customers, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return loadCustomer(s.db.WithContext(ctx), id)
}

// CreateCustomer stores the customer and all of its histories in one transaction.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerData) (*models.Customer, error) {
	customer := models.Customer{
		Name:              nameOrDefault(in.Name),
		Age:               in.Age,
		CustomerHistories: make([]models.CustomerHistory, 0, len(in.Histories)),
	}
	for _, h := range in.Histories {
		customer.CustomerHistories = append(customer.CustomerHistories, models.CustomerHistory{History: h.History})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&customer).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": customer.ID,
		"histories":   len(customer.CustomerHistories),
	}).Info("Customer created")
	return &customer, nil
}

// UpdateCustomer overwrites name and age and reconciles the histories, all
// inside one transaction.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uint, in CustomerData) (*models.Customer, error) {
	var (
		updated *models.Customer
		plan    HistoryPlan
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		if err := tx.Model(&customer).Updates(map[string]interface{}{
			"name": nameOrDefault(in.Name),
			"age":  in.Age,
		}).Error; err != nil {
			return err
		}

		if in.Histories != nil {
			var existing []models.CustomerHistory
			if err := historiesByID(tx).Where("customer_id = ?", id).Find(&existing).Error; err != nil {
				return err
			}
			plan = PlanHistories(id, existing, in.Histories, s.pruneMode)
			if err := applyHistoryPlan(tx, id, plan); err != nil {
				return err
			}
		}

		c, err := loadCustomer(tx, id)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}

	metrics.HistoryChanges.WithLabelValues("updated").Add(float64(len(plan.Updates)))
	metrics.HistoryChanges.WithLabelValues("created").Add(float64(len(plan.Creates)))
	metrics.HistoryChanges.WithLabelValues("deleted").Add(float64(len(plan.Deletes)))

	s.log.WithFields(logrus.Fields{
		"customer_id":       id,
		"histories_updated": len(plan.Updates),
		"histories_created": len(plan.Creates),
		"histories_deleted": len(plan.Deletes),
		"prune_mode":        s.pruneMode,
	}).Info("Customer updated")
	return updated, nil
}

func applyHistoryPlan(tx *gorm.DB, customerID uint, plan HistoryPlan) error {
	for _, h := range plan.Updates {
		if err := tx.Model(&models.CustomerHistory{}).
			Where("id = ? AND customer_id = ?", h.ID, customerID).
			Update("history", h.History).Error; err != nil {
			return err
		}
	}

	if len(plan.Creates) > 0 {
		if err := tx.Create(&plan.Creates).Error; err != nil {
			return err
		}
	}

	if len(plan.Deletes) > 0 {
		if err := tx.Where("customer_id = ? AND id IN ?", customerID, plan.Deletes).
			Delete(&models.CustomerHistory{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteCustomer removes the customer together with its histories.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uint) error {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		histories := tx.Where("customer_id = ?", id).Delete(&models.CustomerHistory{})
		if histories.Error != nil {
			return histories.Error
		}
		removed = histories.RowsAffected

		result := tx.Delete(&models.Customer{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCustomerNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return err
		}
		return fmt.Errorf("delete customer %d: %w", id, err)
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": id,
		"histories":   removed,
	}).Info("Customer deleted")
	return nil
}

func loadCustomer(db *gorm.DB, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := db.Preload("CustomerHistories", historiesByID).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	normalize(&customer)
	return &customer, nil
}

// normalize keeps customer_histories an array on the wire.
func normalize(c *models.Customer) {
	if c.CustomerHistories == nil {
		c.CustomerHistories = []models.CustomerHistory{}
	}
}

func nameOrDefault(name string) string {
	if name == "" {
		return models.DefaultCustomerName
	}
	return name
}
