package embedding

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// profileFields is the field set shared by customers and incoming customers
// that contributes to the profile text.
type profileFields struct {
	CompanyName   string
	Description   *string
	Industry      *string
	ContactName   *string
	Email         *string
	Phone         *string
	AddressLine1  *string
	AddressLine2  *string
	City          *string
	StateProvince *string
	PostalCode    *string
	Country       *string
	AnnualRevenue *float64
	EmployeeCount *int
	Website       *string
}

// BuildCustomerProfileText renders a customer as the text fed to the
// embedding model.
func BuildCustomerProfileText(c *models.Customer) string {
	return buildProfileText(profileFields{
		CompanyName:   c.CompanyName,
		Description:   c.Description,
		Industry:      c.Industry,
		ContactName:   c.ContactName,
		Email:         c.Email,
		Phone:         c.Phone,
		AddressLine1:  c.AddressLine1,
		AddressLine2:  c.AddressLine2,
		City:          c.City,
		StateProvince: c.StateProvince,
		PostalCode:    c.PostalCode,
		Country:       c.Country,
		AnnualRevenue: c.AnnualRevenue,
		EmployeeCount: c.EmployeeCount,
		Website:       c.Website,
	})
}

// BuildIncomingProfileText renders an incoming record as the text fed to the
// embedding model. The format must stay identical to the customer rendering
// so the vectors are comparable.
func BuildIncomingProfileText(ic *models.IncomingCustomer) string {
	return buildProfileText(profileFields{
		CompanyName:   ic.CompanyName,
		Description:   ic.Description,
		Industry:      ic.Industry,
		ContactName:   ic.ContactName,
		Email:         ic.Email,
		Phone:         ic.Phone,
		AddressLine1:  ic.AddressLine1,
		AddressLine2:  ic.AddressLine2,
		City:          ic.City,
		StateProvince: ic.StateProvince,
		PostalCode:    ic.PostalCode,
		Country:       ic.Country,
		AnnualRevenue: ic.AnnualRevenue,
		EmployeeCount: ic.EmployeeCount,
		Website:       ic.Website,
	})
}

func buildProfileText(f profileFields) string {
	parts := make([]string, 0, 10)

	if f.CompanyName != "" {
		parts = append(parts, "Company: "+f.CompanyName)
	}
	appendPart(&parts, "Description", f.Description)
	appendPart(&parts, "Industry", f.Industry)
	appendPart(&parts, "Contact", f.ContactName)
	appendPart(&parts, "Email", f.Email)
	appendPart(&parts, "Phone", f.Phone)

	address := make([]string, 0, 6)
	for _, p := range []*string{f.AddressLine1, f.AddressLine2, f.City, f.StateProvince, f.PostalCode, f.Country} {
		if p != nil && *p != "" {
			address = append(address, *p)
		}
	}
	if len(address) > 0 {
		parts = append(parts, "Address: "+strings.Join(address, " "))
	}

	if f.AnnualRevenue != nil && *f.AnnualRevenue > 0 {
		parts = append(parts, fmt.Sprintf("Annual Revenue: $%.2f", *f.AnnualRevenue))
	}
	if f.EmployeeCount != nil && *f.EmployeeCount > 0 {
		parts = append(parts, fmt.Sprintf("Employees: %d", *f.EmployeeCount))
	}
	appendPart(&parts, "Website", f.Website)

	return strings.Join(parts, " | ")
}

func appendPart(parts *[]string, label string, value *string) {
	if value != nil && *value != "" {
		*parts = append(*parts, label+": "+*value)
	}
}
