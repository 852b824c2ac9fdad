package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StringList is an ordered list of strings stored as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported string list source %T", src)
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Product is a catalog record. Products are immutable once loaded; repositories hand out copies.
type Product struct {
	ID          int             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string          `json:"name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Description string          `json:"description" gorm:"type:text" validate:"required,max=1000"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)" validate:"gt=0"`
	Category    string          `json:"category" gorm:"index;type:varchar(100)" validate:"required"`
	Images      StringList      `json:"images" gorm:"type:text" validate:"min=1,dive,required"`
	Features    StringList      `json:"features,omitempty" gorm:"type:text"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// Clone returns a deep copy so callers never share the catalog's slices.
func (p Product) Clone() Product {
	cp := p
	if p.Images != nil {
		cp.Images = append(StringList(nil), p.Images...)
	}
	if p.Features != nil {
		cp.Features = append(StringList(nil), p.Features...)
	}
	return cp
}
