package domain

import "strings"

type Address struct {
	AddressID    ID      `json:"address_id"`
	AddressType  string  `json:"address_type"`
	FullName     string  `json:"full_name"`
	MobileNumber string  `json:"mobile_number"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	Landmark     *string `json:"landmark,omitempty"`
	Pincode      string  `json:"pincode"`
	City         string  `json:"city,omitempty"`
	State        string  `json:"state,omitempty"`
	IsDefault    bool    `json:"is_default"`
}

// AddressInput is the create/update body of /addresses.
type AddressInput struct {
	AddressType  string  `json:"address_type"`
	FullName     string  `json:"full_name"`
	MobileNumber string  `json:"mobile_number"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	Landmark     *string `json:"landmark,omitempty"`
	Pincode      string  `json:"pincode"`
	City         string  `json:"city,omitempty"`
	State        string  `json:"state,omitempty"`
	IsDefault    bool    `json:"is_default"`
}

func (in AddressInput) Validate() error {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.AddressLine1) == "" {
		return ErrInvalidAddress
	}
	if !isDigits(in.MobileNumber, 10) {
		return ErrInvalidAddress
	}
	return ValidatePincode(in.Pincode)
}

// Input converts an existing address back to an editable form.
func (a Address) Input() AddressInput {
	return AddressInput{
		AddressType:  a.AddressType,
		FullName:     a.FullName,
		MobileNumber: a.MobileNumber,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		Landmark:     a.Landmark,
		Pincode:      a.Pincode,
		City:         a.City,
		State:        a.State,
		IsDefault:    a.IsDefault,
	}
}
