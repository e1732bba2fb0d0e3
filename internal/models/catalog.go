package models

import "time"

type Category struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Slug        string
	Description string
	PriceCents  int64
	Quantity    int
	PhotoKey    string
	Shipping    bool
	Sold        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
