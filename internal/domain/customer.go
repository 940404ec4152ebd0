package domain

import (
	"slices"
	"strings"
	"time"
)

// Customer представляет собой модель клиента
type Customer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email" validate:"required,email"`
	Name      string    `json:"name" validate:"required"`
	Mobile    string    `json:"mobile" validate:"required"`
	Address   string    `json:"address" validate:"required"`
	Zipcode   string    `json:"zipcode" validate:"required"`
	IPAddress string    `json:"ipAddress" validate:"required"`
	Orders    []string  `json:"orders"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomerRequest представляет запрос на регистрацию клиента
type CustomerRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
	Zipcode string `json:"zipcode"`
}

// CustomerPatch частичное обновление клиента; nil-поля не меняются
type CustomerPatch struct {
	Email   *string `json:"email"`
	Name    *string `json:"name"`
	Mobile  *string `json:"mobile"`
	Address *string `json:"address"`
	Zipcode *string `json:"zipcode"`
}

// NewCustomer builds a customer from a registration request and the caller's network origin.
func NewCustomer(req CustomerRequest, ip string) Customer {
	return Customer{
		Email:     strings.TrimSpace(req.Email),
		Name:      req.Name,
		Mobile:    req.Mobile,
		Address:   req.Address,
		Zipcode:   req.Zipcode,
		IPAddress: ip,
		Orders:    []string{},
	}
}

// Apply merges the present fields into c
func (p CustomerPatch) Apply(c *Customer) {
	if p.Email != nil {
		c.Email = strings.TrimSpace(*p.Email)
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Mobile != nil {
		c.Mobile = *p.Mobile
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Zipcode != nil {
		c.Zipcode = *p.Zipcode
	}
}

// HasOrder reports whether orderID is already in the customer's history
func (c *Customer) HasOrder(orderID string) bool {
	return slices.Contains(c.Orders, orderID)
}
