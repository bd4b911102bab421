package store

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an order id has no matching row. Callers treat
// it as a benign no-op: the sweeper and the UI may observe the store
// concurrently, so a vanished id is not a hard failure.
var ErrNotFound = errors.New("order not found")

// orderNumberPool is cycled through when an imported row carries no order
// number of its own.
var orderNumberPool = []string{"1091", "1092", "1093", "1094", "1095", "1096"}

// Store owns the canonical order collection. All mutations go through it and
// are written through to the database immediately; no caller keeps a private
// copy that can diverge.
type Store struct {
	db        *gorm.DB
	selection *Selection
}

func NewStore(db *gorm.DB, selection *Selection) *Store {
	return &Store{db: db, selection: selection}
}

// AssignOrderNumber resolves an order number: the source value with any
// leading '#' stripped, else a fallback pool entry picked by row index, else
// a random 4-digit number.
func AssignOrderNumber(source string, rowIndex int) string {
	source = strings.TrimSpace(source)
	if source != "" {
		return strings.TrimPrefix(source, "#")
	}
	if rowIndex >= 0 {
		return orderNumberPool[rowIndex%len(orderNumberPool)]
	}
	return fmt.Sprintf("%04d", 1000+rand.Intn(9000))
}

// Add inserts a new order. The id is generated here; a missing or invalid
// status defaults to To Process.
func (s *Store) Add(order models.Order) (models.Order, error) {
	order.ID = uuid.NewString()
	if !order.Status.Valid() {
		order.Status = models.StatusToProcess
	}
	if order.OrderNumber == "" {
		order.OrderNumber = AssignOrderNumber("", -1)
	}
	if err := s.db.Create(&order).Error; err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// Get returns the order with the given id.
func (s *Store) Get(id string) (models.Order, error) {
	var order models.Order
	err := s.db.First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrNotFound
	}
	return order, err
}

// UpdateInput carries the optional fields of an order edit. Nil means leave
// the field untouched.
type UpdateInput struct {
	OrderNumber *string
	Product     *string
	Name        *string
	Phone       *string
	Address     *string
	Status      *models.OrderStatus
}

// Update performs a field-level merge on the matching order.
func (s *Store) Update(id string, in UpdateInput) error {
	updates := map[string]interface{}{}
	if in.OrderNumber != nil {
		updates["order_number"] = strings.TrimPrefix(*in.OrderNumber, "#")
	}
	if in.Product != nil {
		updates["product"] = *in.Product
	}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Phone != nil {
		updates["phone"] = normalizeDigits(*in.Phone)
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return fmt.Errorf("invalid status %q", *in.Status)
		}
		updates["status"] = *in.Status
	}
	if len(updates) == 0 {
		return nil
	}
	res := s.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus transitions the order to the given status.
func (s *Store) SetStatus(id string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	res := s.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkMessageSent stamps the last outbound message time.
func (s *Store) MarkMessageSent(id string, at time.Time) error {
	res := s.db.Model(&models.Order{}).Where("id = ?", id).Update("last_message_sent", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the order and prunes it from the selection set.
func (s *Store) Delete(id string) error {
	res := s.db.Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if s.selection != nil {
		s.selection.Remove(id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every order and clears the selection.
func (s *Store) DeleteAll() error {
	if err := s.db.Where("1 = 1").Delete(&models.Order{}).Error; err != nil {
		return err
	}
	if s.selection != nil {
		s.selection.Clear()
	}
	return nil
}

// ConfirmByPhone finds the first To Process order with the given phone and
// marks it Confirmed, stamping the response time and incrementing the
// response counter. Returns the updated order, or ErrNotFound when no order
// is awaiting confirmation on that phone.
func (s *Store) ConfirmByPhone(phone string, at time.Time) (models.Order, error) {
	var order models.Order
	err := s.db.
		Where("phone = ? AND status = ?", normalizeDigits(phone), models.StatusToProcess).
		Order("created_at").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}

	order.Status = models.StatusConfirmed
	order.LastResponseReceived = &at
	order.ResponseCount++
	if err := s.db.Save(&order).Error; err != nil {
		return models.Order{}, err
	}
	logger.Info("Order confirmed by customer response",
		zap.String("order_id", order.ID), zap.String("phone", order.Phone))
	return order, nil
}

// PhoneExists reports whether any order already carries the normalized phone.
func (s *Store) PhoneExists(phone string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Order{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Search string
	Status models.OrderStatus
	Since  time.Time
	Limit  int
	Offset int
}

// List returns orders matching the filter, newest first.
func (s *Store) List(f ListFilter) ([]models.Order, int64, error) {
	q := s.db.Model(&models.Order{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"lower(name) LIKE ? OR phone LIKE ? OR lower(order_number) LIKE ? OR lower(product) LIKE ? OR lower(address) LIKE ?",
			like, like, like, like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, total, nil
}

// Stale returns To Process orders whose last message is older than the cutoff.
func (s *Store) Stale(cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.
		Where("status = ? AND last_message_sent IS NOT NULL AND last_message_sent < ?",
			models.StatusToProcess, cutoff).
		Find(&orders).Error
	return orders, err
}

func normalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
