package inventory

import (
	"errors"
	"slices"

	"custom-id-generator/internal/customid"
)

var (
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrForbidden         = errors.New("forbidden")
)

type Category string

const (
	CategoryEquipment Category = "Equipment"
	CategoryFurniture Category = "Furniture"
	CategoryBook      Category = "Book"
	CategoryOther     Category = "Other"
)

type User struct {
	ID      string
	Name    string
	IsAdmin bool
}

type Inventory struct {
	ID          string
	Title       string
	Category    Category
	Tags        []string
	OwnerID     string
	IsPublic    bool
	WriteAccess []string
	Template    customid.Template
	Version     int
}

func (inv Inventory) clone() Inventory {
	inv.Tags = slices.Clone(inv.Tags)
	inv.WriteAccess = slices.Clone(inv.WriteAccess)
	inv.Template = slices.Clone(inv.Template)
	return inv
}

// CanWrite reports whether user may add items to inv. Anonymous callers
// (nil user) never can; public inventories accept any signed-in user.
func CanWrite(user *User, inv Inventory) bool {
	if user == nil {
		return false
	}

	return user.IsAdmin ||
		user.ID == inv.OwnerID ||
		inv.IsPublic ||
		slices.Contains(inv.WriteAccess, user.ID)
}

// CanManage reports whether user may change inv's settings, including its id
// template.
func CanManage(user *User, inv Inventory) bool {
	return user != nil && (user.IsAdmin || user.ID == inv.OwnerID)
}
