package session

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stage is the conversational phase of a session
type Stage string

const (
	StageGreeting        Stage = "greeting"
	StageBrowsing        Stage = "browsing"
	StageOrdering        Stage = "ordering"
	StageAwaitingPayment Stage = "awaiting_payment"
	StageIdle            Stage = "idle"
)

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one inbound-or-outbound message unit stored in session history
type Turn struct {
	Role string    `json:"role"`
	Body string    `json:"body"`
	At   time.Time `json:"at"`
}

// Turns is a custom type for JSONB array
type Turns []Turn

// Scan implements sql.Scanner interface
func (t *Turns) Scan(value interface{}) error {
	if value == nil {
		*t = []Turn{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, t)
}

// Value implements driver.Valuer interface
func (t Turns) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal([]Turn{})
	}
	return json.Marshal(t)
}

// Session is the conversation context between one business and one customer.
// Exactly one live session exists per (business_id, customer_id); Version
// backs the optimistic concurrency check in the store.
type Session struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_session_key,priority:1" json:"business_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_session_key,priority:2" json:"customer_id"`

	Stage          Stage      `gorm:"type:text;not null;default:'greeting'" json:"stage"`
	Turns          Turns      `gorm:"type:jsonb;not null" json:"turns"`
	LastActivity   time.Time  `gorm:"not null;index" json:"last_activity"`
	PendingOrderID *uuid.UUID `gorm:"type:uuid" json:"pending_order_id,omitempty"`
	Version        int        `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Session) TableName() string {
	return "sessions"
}

// BeforeCreate sets UUID before creating
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AppendTurn adds a turn to the bounded history, evicting the oldest turns
// first when capacity is exceeded.
func (s *Session) AppendTurn(turn Turn, capacity int) {
	s.Turns = append(s.Turns, turn)
	if capacity > 0 && len(s.Turns) > capacity {
		s.Turns = s.Turns[len(s.Turns)-capacity:]
	}
}

// IsExpired reports whether the session has been inactive longer than the
// configured idle timeout.
func (s *Session) IsExpired(now time.Time, idleTimeout time.Duration) bool {
	return now.Sub(s.LastActivity) > idleTimeout
}

// Reinitialize resets the session to a fresh greeting state. History and the
// pending order reference are dropped; the version is kept so the optimistic
// check still guards the next save.
func (s *Session) Reinitialize() {
	s.Stage = StageGreeting
	s.Turns = Turns{}
	s.PendingOrderID = nil
}

// Clone returns a deep copy, so a caller can retry against a reloaded
// session without mutating the original.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Turns = make(Turns, len(s.Turns))
	copy(cp.Turns, s.Turns)
	if s.PendingOrderID != nil {
		id := *s.PendingOrderID
		cp.PendingOrderID = &id
	}
	return &cp
}
