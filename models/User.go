package models

import "gorm.io/gorm"

// Staff roles. Roles gate which sections of the application a user may
// reach and which purchase status transitions they may perform.
const (
	RoleChef             = "Chef"
	RoleChefManager      = "Chef Manager"
	RoleBartender        = "Bartender"
	RoleManager          = "Manager"
	RoleOperationManager = "Operation Manager"
	RolePurchaseManager  = "Purchase Manager"
	RoleCostController   = "Cost Controller"
)

// DefaultCurrency is assigned to accounts that never picked one.
const DefaultCurrency = "AED"

// User represents a staff account. Credentials are handled by the external
// authentication layer; only the profile the application needs lives here.
type User struct {
	gorm.Model
	Username          string `gorm:"uniqueIndex;not null" json:"username"`
	Email             string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Role              string `gorm:"type:varchar(50)" json:"role"`
	Organisation      string `gorm:"type:varchar(200)" json:"organisation"`
	RestaurantBarName string `gorm:"type:varchar(200)" json:"restaurant_bar_name"`
	Country           string `gorm:"type:varchar(10)" json:"country"`
	Currency          string `gorm:"type:varchar(10);default:AED" json:"currency"`
}

// DisplayName returns the name shown in lists and reports.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
