package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"whatsbot-gateway/internal/csvimport"
	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"
	"whatsbot-gateway/internal/ws"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Store     *store.Store
	Selection *store.Selection
	Importer  *csvimport.Importer
	Hub       *ws.Hub
}

func NewOrderHandler(st *store.Store, sel *store.Selection, imp *csvimport.Importer, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{Store: st, Selection: sel, Importer: imp, Hub: hub}
}

// dateWindow maps the dashboard date filter keys to a cutoff time.
func dateWindow(key string, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch key {
	case "today":
		return day
	case "yesterday":
		return day.AddDate(0, 0, -1)
	case "week":
		return day.AddDate(0, 0, -int(now.Weekday()))
	case "15days":
		return day.AddDate(0, 0, -15)
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case "3months":
		return day.AddDate(0, -3, 0)
	case "6months":
		return day.AddDate(0, -6, 0)
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := store.ListFilter{
		Search: c.Query("search"),
		Status: models.OrderStatus(c.Query("status")),
		Since:  dateWindow(c.Query("date"), time.Now()),
		Limit:  limit,
		Offset: offset,
	}

	orders, total, err := h.Store.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

type CreateOrderRequest struct {
	OrderNumber string `json:"order_number"`
	Product     string `json:"product" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Address     string `json:"address"`
	Status      string `json:"status"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := csvimport.NormalizePhone(req.Phone)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone must contain digits"})
		return
	}

	order := models.Order{
		OrderNumber: store.AssignOrderNumber(req.OrderNumber, -1),
		Product:     req.Product,
		Name:        req.Name,
		Phone:       phone,
		Address:     req.Address,
		Status:      models.NormalizeStatus(req.Status),
	}
	created, err := h.Store.Add(order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	h.Hub.NotifyOrderUpdate(created)
	c.JSON(http.StatusCreated, created)
}

type UpdateOrderRequest struct {
	OrderNumber *string `json:"order_number"`
	Product     *string `json:"product"`
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Status      *string `json:"status"`
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id := c.Param("id")
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := store.UpdateInput{
		OrderNumber: req.OrderNumber,
		Product:     req.Product,
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
	}
	if req.Status != nil {
		st := models.OrderStatus(*req.Status)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		in.Status = &st
	}

	err := h.Store.Update(id, in)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if order, err := h.Store.Get(id); err == nil {
		h.Hub.NotifyOrderUpdate(order)
	}
	c.JSON(http.StatusOK, gin.H{"status": "Order updated"})
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	id := c.Param("id")
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := models.OrderStatus(req.Status)
	if !st.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	err := h.Store.SetStatus(id, st)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if order, err := h.Store.Get(id); err == nil {
		h.Hub.NotifyOrderUpdate(order)
	}
	c.JSON(http.StatusOK, gin.H{"status": "Status updated"})
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	err := h.Store.Delete(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Order deleted"})
}

func (h *OrderHandler) DeleteAllOrders(c *gin.Context) {
	if err := h.Store.DeleteAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "All orders deleted"})
}

type ImportRequest struct {
	CSV string `json:"csv" binding:"required"`
}

// ImportPreview parses a bounded prefix of the file for display before the
// operator commits the import.
func (h *OrderHandler) ImportPreview(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	headers, rows, cols, err := csvimport.Preview(req.CSV)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing CSV file. Please check the format and try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"headers": headers, "rows": rows, "column_map": cols})
}

func (h *OrderHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Importer.Import(req.CSV)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error importing CSV file. Please check the format and try again."})
		return
	}
	c.JSON(http.StatusOK, result)
}

type SelectionRequest struct {
	Action string   `json:"action" binding:"required"` // toggle, select_all, clear
	ID     string   `json:"id"`
	IDs    []string `json:"ids"`
}

func (h *OrderHandler) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"selected": h.Selection.Selected()})
}

func (h *OrderHandler) UpdateSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case "toggle":
		if req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required for toggle"})
			return
		}
		if _, err := h.Store.Get(req.ID); errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		h.Selection.Toggle(req.ID)
	case "select_all":
		ids := req.IDs
		if len(ids) == 0 {
			orders, _, err := h.Store.List(store.ListFilter{})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
		}
		h.Selection.SelectAll(ids)
	case "clear":
		h.Selection.Clear()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"selected": h.Selection.Selected()})
}
