// Package models contains the GORM persistence models and their conversions
// to and from the domain entities. Domain aggregates never carry persistence
// concerns; all column mapping lives here.
package models
