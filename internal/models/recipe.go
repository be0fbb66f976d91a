package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONBStringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is a generated recipe saved for its owner.
type Recipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string           `gorm:"size:255;not null" json:"name"`
	Ingredients  JSONBStringArray `gorm:"type:jsonb;not null" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:jsonb;not null" json:"instructions"`
	CookingTime  string           `gorm:"size:100" json:"cooking_time,omitempty"`
	Servings     string           `gorm:"size:100" json:"servings,omitempty"`
	Difficulty   string           `gorm:"size:50" json:"difficulty,omitempty"`
	Tips         JSONBStringArray `gorm:"type:jsonb" json:"tips"`
	SearchQuery  string           `gorm:"type:text;not null" json:"search_query"`
	Image        string           `gorm:"type:text" json:"image,omitempty"`
	Embedding    *pgvector.Vector `gorm:"type:vector(3)" json:"-"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
