package transport

import "github.com/Skotchmaster/pharmacy_shop/internal/models"

type RegisterRequest struct {
	Username string `json:"username" validate:"notblank"`
	Email    string `json:"email"    validate:"notblank"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

type LoginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ClaimsResponse struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IssuedAt int64  `json:"iat"`
	Expires  int64  `json:"exp"`
}

type ProtectedResponse struct {
	Message string         `json:"message"`
	User    ClaimsResponse `json:"user"`
}

type CreateProductRequest struct {
	ID                   int      `json:"id"                   validate:"gt=0"`
	Brand                string   `json:"brand"                validate:"notblank"`
	Generic              string   `json:"generic"              validate:"notblank"`
	Type                 string   `json:"type"                 validate:"notblank"`
	Manufacturer         string   `json:"manufacturer"         validate:"notblank"`
	Price                *float64 `json:"price"                validate:"required,gte=0"`
	Image                string   `json:"image"                validate:"notblank"`
	Description          string   `json:"description"          validate:"notblank"`
	RequiresPrescription bool     `json:"requiresPrescription"`
	Rating               float64  `json:"rating"               validate:"gte=0,lte=5"`
}

type PatchProductRequest struct {
	Brand                *string  `json:"brand"                validate:"omitnil,notblank"`
	Generic              *string  `json:"generic"              validate:"omitnil,notblank"`
	Type                 *string  `json:"type"                 validate:"omitnil,notblank"`
	Manufacturer         *string  `json:"manufacturer"         validate:"omitnil,notblank"`
	Price                *float64 `json:"price"                validate:"omitnil,gte=0"`
	Image                *string  `json:"image"                validate:"omitnil,notblank"`
	Description          *string  `json:"description"          validate:"omitnil,notblank"`
	RequiresPrescription *bool    `json:"requiresPrescription"`
	Rating               *float64 `json:"rating"               validate:"omitnil,gte=0,lte=5"`
}

func (r CreateProductRequest) Product() models.Product {
	p := models.Product{
		ID:                   r.ID,
		Brand:                r.Brand,
		Generic:              r.Generic,
		Type:                 r.Type,
		Manufacturer:         r.Manufacturer,
		Image:                r.Image,
		Description:          r.Description,
		RequiresPrescription: r.RequiresPrescription,
		Rating:               r.Rating,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	return p
}

func (r PatchProductRequest) Apply(p *models.Product) {
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.Generic != nil {
		p.Generic = *r.Generic
	}
	if r.Type != nil {
		p.Type = *r.Type
	}
	if r.Manufacturer != nil {
		p.Manufacturer = *r.Manufacturer
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.RequiresPrescription != nil {
		p.RequiresPrescription = *r.RequiresPrescription
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
}
