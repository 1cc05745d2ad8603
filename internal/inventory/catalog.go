package inventory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"custom-id-generator/internal/customid"
)

// Catalog is the in-process view of users and inventories. Readers always get
// copies, so a template handed to the generator cannot change underneath it.
type Catalog struct {
	mu          sync.RWMutex
	users       map[string]User
	inventories map[string]Inventory
}

func NewCatalog() *Catalog {
	return &Catalog{
		users:       make(map[string]User),
		inventories: make(map[string]Inventory),
	}
}

func (c *Catalog) User(id string) (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.users[id]
	return u, ok
}

func (c *Catalog) Inventory(id string) (Inventory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	inv, ok := c.inventories[id]
	if !ok {
		return Inventory{}, false
	}
	return inv.clone(), true
}

func (c *Catalog) Inventories() []Inventory {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Inventory, 0, len(c.inventories))
	for _, inv := range c.inventories {
		out = append(out, inv.clone())
	}
	return out
}

// Replace swaps the whole content after validating every template.
func (c *Catalog) Replace(users []User, inventories []Inventory) error {
	userMap := make(map[string]User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	invMap := make(map[string]Inventory, len(inventories))
	for _, inv := range inventories {
		if inv.ID == "" {
			return fmt.Errorf("inventory without id")
		}
		if _, dup := invMap[inv.ID]; dup {
			return fmt.Errorf("inventory %q defined twice", inv.ID)
		}
		if _, err := customid.Validate(inv.Template); err != nil {
			return fmt.Errorf("inventory %q: %w", inv.ID, err)
		}
		invMap[inv.ID] = inv.clone()
	}

	c.mu.Lock()
	c.users = userMap
	c.inventories = invMap
	c.mu.Unlock()

	return nil
}

func (c *Catalog) Put(inv Inventory) error {
	if inv.ID == "" {
		return fmt.Errorf("inventory without id")
	}
	if _, err := customid.Validate(inv.Template); err != nil {
		return fmt.Errorf("inventory %q: %w", inv.ID, err)
	}

	c.mu.Lock()
	c.inventories[inv.ID] = inv.clone()
	c.mu.Unlock()

	return nil
}

func (c *Catalog) PutUser(u User) {
	c.mu.Lock()
	c.users[u.ID] = u
	c.mu.Unlock()
}

func (c *Catalog) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.inventories[id]
	delete(c.inventories, id)
	return ok
}

// SetTemplate replaces the id template of an inventory on behalf of userID
// and bumps its version.
func (c *Catalog) SetTemplate(userID, inventoryID string, tmpl customid.Template) (Inventory, error) {
	if _, err := customid.Validate(tmpl); err != nil {
		return Inventory{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	inv, ok := c.inventories[inventoryID]
	if !ok {
		return Inventory{}, fmt.Errorf("%w: %s", ErrInventoryNotFound, inventoryID)
	}

	var user *User
	if u, ok := c.users[userID]; ok {
		user = &u
	}
	if !CanManage(user, inv) {
		return Inventory{}, fmt.Errorf("%w: user %q cannot manage inventory %q", ErrForbidden, userID, inventoryID)
	}

	inv.Template = append(customid.Template(nil), tmpl...)
	inv.Version++
	c.inventories[inventoryID] = inv

	return inv.clone(), nil
}

type fileUser struct {
	ID    string `yaml:"id" toml:"id"`
	Name  string `yaml:"name" toml:"name"`
	Admin bool   `yaml:"admin" toml:"admin"`
}

type fileElement struct {
	ID    string `yaml:"id" toml:"id"`
	Type  string `yaml:"type" toml:"type"`
	Value string `yaml:"value" toml:"value"`
	Width int    `yaml:"width" toml:"width"`
	Order int    `yaml:"order" toml:"order"`
}

type fileInventory struct {
	ID          string        `yaml:"id" toml:"id"`
	Title       string        `yaml:"title" toml:"title"`
	Category    string        `yaml:"category" toml:"category"`
	Tags        []string      `yaml:"tags" toml:"tags"`
	Owner       string        `yaml:"owner" toml:"owner"`
	Public      bool          `yaml:"public" toml:"public"`
	WriteAccess []string      `yaml:"writeAccess" toml:"write_access"`
	Version     int           `yaml:"version" toml:"version"`
	Format      []fileElement `yaml:"customIdFormat" toml:"custom_id_format"`
}

type catalogFile struct {
	Users       []fileUser      `yaml:"users" toml:"users"`
	Inventories []fileInventory `yaml:"inventories" toml:"inventories"`
}

// LoadFile parses a YAML (.yaml, .yml) or TOML (.toml) catalog and replaces
// the content of c. c is left unchanged on error.
func (c *Catalog) LoadFile(path string) error {
	users, inventories, err := ParseFile(path)
	if err != nil {
		return err
	}

	return c.Replace(users, inventories)
}

func ParseFile(path string) ([]User, []Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}
	// rejected so that a reload racing a truncating write keeps the previous catalog
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("catalog %s is empty", path)
	}

	var f catalogFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	return f.convert()
}

func (f catalogFile) convert() ([]User, []Inventory, error) {
	users := make([]User, 0, len(f.Users))
	for _, u := range f.Users {
		users = append(users, User{ID: u.ID, Name: u.Name, IsAdmin: u.Admin})
	}

	inventories := make([]Inventory, 0, len(f.Inventories))
	for _, fi := range f.Inventories {
		tmpl := make(customid.Template, 0, len(fi.Format))
		for i, fe := range fi.Format {
			el, ok := customid.ParseKind(fe.Type)
			if !ok {
				return nil, nil, fmt.Errorf("inventory %q: element %d: unknown type %q", fi.ID, i, fe.Type)
			}
			el.ID = fe.ID
			if el.ID == "" {
				el.ID = fmt.Sprintf("%s-%d", fi.ID, i+1)
			}
			el.Order = fe.Order
			el.Value = fe.Value
			if fe.Width != 0 {
				el.Width = fe.Width
			}
			tmpl = append(tmpl, el)
		}

		category := Category(fi.Category)
		if category == "" {
			category = CategoryOther
		}

		inventories = append(inventories, Inventory{
			ID:          fi.ID,
			Title:       fi.Title,
			Category:    category,
			Tags:        fi.Tags,
			OwnerID:     fi.Owner,
			IsPublic:    fi.Public,
			WriteAccess: fi.WriteAccess,
			Template:    tmpl,
			Version:     max(fi.Version, 1),
		})
	}

	return users, inventories, nil
}
