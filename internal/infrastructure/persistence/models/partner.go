package models

import (
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	OwnedAggregateModel
	Name         string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"type:varchar(255);index"`
	Phone        string `gorm:"type:varchar(50)"`
	AddressLine1 string `gorm:"type:varchar(255)"`
	AddressLine2 string `gorm:"type:varchar(255)"`
	City         string `gorm:"type:varchar(100)"`
	State        string `gorm:"type:varchar(100)"`
	PostalCode   string `gorm:"type:varchar(20)"`
	Country      string `gorm:"type:varchar(100)"`
	TaxID        string `gorm:"type:varchar(50)"`
	Notes        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		AddressLine1:       m.AddressLine1,
		AddressLine2:       m.AddressLine2,
		City:               m.City,
		State:              m.State,
		PostalCode:         m.PostalCode,
		Country:            m.Country,
		TaxID:              m.TaxID,
		Notes:              m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainOwnedAggregateRoot(c.OwnedAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.AddressLine1 = c.AddressLine1
	m.AddressLine2 = c.AddressLine2
	m.City = c.City
	m.State = c.State
	m.PostalCode = c.PostalCode
	m.Country = c.Country
	m.TaxID = c.TaxID
	m.Notes = c.Notes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
