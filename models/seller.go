package models

// Seller owns zero or more transactions.
type Seller struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	ContactInfo      string   `json:"contactInfo"`
	RegistrationDate DateTime `json:"registrationDate"`
}

// SellerDetails is the mutable part of a seller accepted on update.
type SellerDetails struct {
	Name        string `json:"name"`
	ContactInfo string `json:"contactInfo"`
}
