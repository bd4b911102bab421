package models

import (
	"strings"
	"time"
)

// OrderStatus is the closed set of states an order moves through.
type OrderStatus string

const (
	StatusToProcess     OrderStatus = "To Process"
	StatusConfirmed     OrderStatus = "Confirmed"
	StatusCancelled     OrderStatus = "Cancelled"
	StatusNotResponding OrderStatus = "Not Responding"
)

// AllStatuses lists every valid status, in display order.
var AllStatuses = []OrderStatus{StatusToProcess, StatusConfirmed, StatusCancelled, StatusNotResponding}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusToProcess, StatusConfirmed, StatusCancelled, StatusNotResponding:
		return true
	}
	return false
}

// NormalizeStatus maps free-form status text onto the closed enum. Exact
// values pass through; anything else is classified by substring, defaulting
// to To Process.
func NormalizeStatus(raw string) OrderStatus {
	if st := OrderStatus(raw); st.Valid() {
		return st
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "not") && strings.Contains(lower, "respond"):
		return StatusNotResponding
	case strings.Contains(lower, "process"):
		return StatusToProcess
	case strings.Contains(lower, "confirm"):
		return StatusConfirmed
	case strings.Contains(lower, "cancel"):
		return StatusCancelled
	}
	return StatusToProcess
}

// Order represents a customer purchase tracked through the confirmation workflow.
type Order struct {
	ID                   string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber          string      `gorm:"type:varchar(50)" json:"order_number"`
	Product              string      `gorm:"type:varchar(255)" json:"product"`
	Name                 string      `gorm:"type:varchar(255)" json:"name"`
	Phone                string      `gorm:"index;type:varchar(50)" json:"phone"`
	Address              string      `gorm:"type:text" json:"address"`
	Status               OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	LastMessageSent      *time.Time  `json:"last_message_sent"`
	LastResponseReceived *time.Time  `json:"last_response_received"`
	ResponseCount        int         `gorm:"default:0" json:"response_count"`
	CreatedAt            time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Template represents a parametrized message body with {placeholder} variables.
type Template struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Variables string    `gorm:"type:text" json:"variables"` // Comma separated, recomputed from Content on every write
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

// VariableList splits the cached Variables column.
func (t Template) VariableList() []string {
	if t.Variables == "" {
		return nil
	}
	return strings.Split(t.Variables, ",")
}

// FAQ represents a keyword-triggered canned response to inbound customer text.
type FAQ struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Keywords  string    `gorm:"type:text;not null" json:"keywords"` // Comma separated, at least one
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (FAQ) TableName() string {
	return "faqs"
}

// KeywordList splits the stored keywords, dropping empties.
func (f FAQ) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(f.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Settings is the single process-wide settings row.
type Settings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	BusinessName     string    `gorm:"type:varchar(255)" json:"business_name"`
	WebsiteURL       string    `gorm:"type:varchar(255)" json:"website_url"`
	AutoRun          bool      `gorm:"default:false" json:"auto_run"`
	HeadlessMode     bool      `gorm:"default:false" json:"headless_mode"`
	MessageInterval  int       `gorm:"default:5" json:"message_interval"`     // minutes, >= 1
	FollowUpInterval int       `gorm:"default:120" json:"follow_up_interval"` // minutes, >= 30 recommended
	MaxFollowUps     int       `gorm:"default:3" json:"max_follow_ups"`       // 1..5
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}

// MessageLog records one outbound delivery attempt or inbound message.
type MessageLog struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID      string    `gorm:"index;type:varchar(36)" json:"order_id"`
	Phone        string    `gorm:"type:varchar(50)" json:"phone"`
	OrderNumber  string    `gorm:"type:varchar(50)" json:"order_number"`
	CustomerName string    `gorm:"type:varchar(255)" json:"customer_name"`
	Direction    string    `gorm:"type:varchar(10)" json:"direction"` // outbound | inbound
	Content      string    `gorm:"type:text" json:"content"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // delivered | failed | received
	ErrorMessage string    `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MessageLog) TableName() string {
	return "message_logs"
}

// User is an operator account gating edit/delete operations.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
