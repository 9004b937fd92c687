package models

import (
	"time"

	"github.com/google/uuid"
)

// Market represents the exchange a stock is listed on
type Market string

const (
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
)

// Stock represents a listed equity
type Stock struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	Code      string    `db:"code" json:"code" validate:"required,len=6"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Market    Market    `db:"market" json:"market" validate:"required,oneof=KOSPI KOSDAQ"`
	Sector    string    `db:"sector" json:"sector"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
