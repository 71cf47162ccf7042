package dummyjson

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Pagination is the paging envelope shared by every list endpoint. A Limit
// of zero means the server returned every matching item.
type Pagination struct {
	Total int `json:"total" validate:"gte=0"`
	Skip  int `json:"skip" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0"`
}

// HasMore reports whether items exist past the current page
func (p Pagination) HasMore() bool {
	return p.Limit > 0 && p.Skip+p.Limit < p.Total
}

func (p Pagination) check(n int) error {
	if p.Limit > 0 && n > p.Limit {
		return fmt.Errorf("page holds %d items, limit is %d", n, p.Limit)
	}
	return nil
}

// Hair describes a user's hair
type Hair struct {
	Color string `json:"color"`
	Type  string `json:"type"`
}

// Coordinates is a geographic position
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Address is a postal address with coordinates
type Address struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	State       *string     `json:"state"`
	StateCode   *string     `json:"stateCode"`
	PostalCode  string      `json:"postalCode"`
	Coordinates Coordinates `json:"coordinates"`
	Country     string      `json:"country"`
}

// Company is a user's employer
type Company struct {
	Department string  `json:"department"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Address    Address `json:"address"`
}

// Bank holds a user's card details
type Bank struct {
	CardExpire string `json:"cardExpire"`
	CardNumber string `json:"cardNumber"`
	CardType   string `json:"cardType"`
	Currency   string `json:"currency"`
	IBAN       string `json:"iban"`
}

// Crypto holds a user's wallet
type Crypto struct {
	Coin    string `json:"coin"`
	Wallet  string `json:"wallet"`
	Network string `json:"network"`
}

// User is a DummyJSON user
type User struct {
	ID         int     `json:"id" validate:"gt=0"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	MaidenName string  `json:"maidenName"`
	Age        int     `json:"age" validate:"gte=0"`
	Gender     string  `json:"gender"`
	Email      string  `json:"email" validate:"email"`
	Phone      string  `json:"phone"`
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	BirthDate  string  `json:"birthDate"`
	Image      string  `json:"image"`
	BloodGroup string  `json:"bloodGroup"`
	Height     float64 `json:"height" validate:"gte=0"`
	Weight     float64 `json:"weight" validate:"gte=0"`
	EyeColor   string  `json:"eyeColor"`
	Hair       Hair    `json:"hair"`
	IP         string  `json:"ip"`
	Address    Address `json:"address"`
	MacAddress string  `json:"macAddress"`
	University string  `json:"university"`
	Bank       Bank    `json:"bank"`
	Company    Company `json:"company"`
	EIN        string  `json:"ein"`
	SSN        string  `json:"ssn"`
	UserAgent  string  `json:"userAgent"`
	Crypto     Crypto  `json:"crypto"`
	Role       string  `json:"role"`

	// Set on delete responses only
	IsDeleted *bool      `json:"isDeleted"`
	DeletedOn *time.Time `json:"deletedOn"`
}

// FullName returns the first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UsersPage is one page of users
type UsersPage struct {
	Users []User `json:"users" validate:"dive"`
	Pagination
}

// Check implements model.Checker
func (p *UsersPage) Check() error {
	return p.check(len(p.Users))
}

// Dimensions of a product
type Dimensions struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
	Depth  float64 `json:"depth" validate:"gte=0"`
}

// Review is a customer review of a product
type Review struct {
	Rating        int       `json:"rating" validate:"gte=0,lte=5"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail"`
}

// Meta holds bookkeeping for a product
type Meta struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Barcode   string    `json:"barcode"`
	QRCode    string    `json:"qrCode"`
}

// Product is a DummyJSON product. Only id, title, category and price are
// guaranteed by every endpoint.
type Product struct {
	ID                   int         `json:"id" validate:"gt=0"`
	Title                string      `json:"title"`
	Description          *string     `json:"description"`
	Category             string      `json:"category"`
	Price                float64     `json:"price" validate:"gte=0"`
	DiscountPercentage   *float64    `json:"discountPercentage"`
	Rating               *float64    `json:"rating" validate:"omitnil,gte=0,lte=5"`
	Stock                *int        `json:"stock" validate:"omitnil,gte=0"`
	Tags                 []string    `json:"tags,omitempty"`
	Brand                *string     `json:"brand"`
	SKU                  *string     `json:"sku"`
	Weight               *float64    `json:"weight"`
	Dimensions           *Dimensions `json:"dimensions"`
	WarrantyInformation  *string     `json:"warrantyInformation"`
	ShippingInformation  *string     `json:"shippingInformation"`
	AvailabilityStatus   *string     `json:"availabilityStatus"`
	Reviews              []Review    `json:"reviews,omitempty" validate:"dive"`
	ReturnPolicy         *string     `json:"returnPolicy"`
	MinimumOrderQuantity *int        `json:"minimumOrderQuantity"`
	Meta                 *Meta       `json:"meta"`
	Thumbnail            *string     `json:"thumbnail"`
	Images               []string    `json:"images,omitempty"`

	// Set on delete responses only
	IsDeleted *bool      `json:"isDeleted"`
	DeletedOn *time.Time `json:"deletedOn"`
}

// InStock reports whether the product has stock left. Unknown stock counts
// as in stock.
func (p *Product) InStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

// ProductsPage is one page of products
type ProductsPage struct {
	Products []Product `json:"products" validate:"dive"`
	Pagination
}

// Check implements model.Checker
func (p *ProductsPage) Check() error {
	return p.check(len(p.Products))
}

// Category is a product category. The categories endpoint has answered
// with both bare strings and objects; both decode into a Category.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UnmarshalJSON accepts "beauty" or {"slug":"beauty","name":"Beauty",...}
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		*c = Category{Slug: s, Name: s}
		return nil
	}

	type plain Category
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Category{
		Slug: strings.TrimSpace(p.Slug),
		Name: strings.TrimSpace(p.Name),
		URL:  strings.TrimSpace(p.URL),
	}
	return nil
}

// String returns the slug, falling back to the name
func (c Category) String() string {
	if c.Slug != "" {
		return c.Slug
	}
	return c.Name
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required"`
	ExpiresInMins int    `json:"expiresInMins" default:"60" validate:"gt=0"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Gender       string `json:"gender"`
	Image        string `json:"image"`
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshTokenRequest is the body of POST /auth/refresh
type RefreshTokenRequest struct {
	RefreshToken  string `json:"refreshToken" validate:"required"`
	ExpiresInMins int    `json:"expiresInMins" default:"60" validate:"gt=0"`
}

// RefreshTokenResponse carries a fresh token pair
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}
