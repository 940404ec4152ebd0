package domain

import "time"

// MaxServiceImages is the upper bound of images attached to one service
const MaxServiceImages = 5

// Product физический товар
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Price       string    `json:"price" validate:"required,price"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductRequest поля создания товара (изображение передается отдельно)
type ProductRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
	Category    string `json:"category" form:"category"`
}

// ProductPatch частичное обновление товара. The stored image is owned by the product and is not patchable.
type ProductPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Category    *string `json:"category"`
}

// Apply merges the present fields into p
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
}

// Offer промо-вариант услуги
type Offer struct {
	Name        string `json:"name" validate:"required"`
	Price       string `json:"price" validate:"required,price"`
	Description string `json:"description" validate:"required"`
}

// Service бронируемая услуга
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Price       string    `json:"price" validate:"required,price"`
	Images      []string  `json:"images" validate:"max=5"`
	Offers      []Offer   `json:"offers" validate:"dive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ServiceRequest поля создания услуги
type ServiceRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Offers      []Offer `json:"offers"`
}

// ServicePatch частичное обновление услуги. Offers, when present, replace the whole list.
// Images are set only at creation.
type ServicePatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *string  `json:"price"`
	Offers      *[]Offer `json:"offers"`
}

// Apply merges the present fields into s
func (sp ServicePatch) Apply(s *Service) {
	if sp.Name != nil {
		s.Name = *sp.Name
	}
	if sp.Description != nil {
		s.Description = *sp.Description
	}
	if sp.Price != nil {
		s.Price = *sp.Price
	}
	if sp.Offers != nil {
		s.Offers = append([]Offer{}, (*sp.Offers)...)
	}
}
