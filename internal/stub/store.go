// internal/stub/store.go
package stub

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"console-agent/internal/domain/account"
	"console-agent/internal/domain/catalog"
	settingsdom "console-agent/internal/domain/settings"
)

// Store is the stub backend's in-memory state. Development vehicle only;
// everything is lost on exit.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*userRecord
	settings map[string][]settingsdom.Setting
	products map[int64]catalog.Product
	nextID   int64
	nextUser int64
}

type userRecord struct {
	passwordHash []byte
	profile      account.Profile
}

func NewStore() *Store {
	s := &Store{
		users:    make(map[string]*userRecord),
		settings: make(map[string][]settingsdom.Setting),
		products: make(map[int64]catalog.Product),
		nextID:   1,
		nextUser: 1,
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	_ = s.CreateUser("alice", "password123", account.Profile{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Admin",
		Language: "en",
		Timezone: "UTC",
	})

	s.settings[settingsdom.SectionSecurity] = []settingsdom.Setting{
		{
			SectionPath:  settingsdom.SectionSecurity,
			SettingName:  settingsdom.NameSessionTimeout,
			Value:        600,
			DefaultValue: 600,
			IsPublic:     false,
		},
		{
			SectionPath:  settingsdom.SectionSecurity,
			SettingName:  settingsdom.NameRefreshMargin,
			Value:        60,
			DefaultValue: 60,
			IsPublic:     false,
		},
	}
	s.settings["Application.Display"] = []settingsdom.Setting{
		{SectionPath: "Application.Display", SettingName: "theme", Value: "light", DefaultValue: "light", IsPublic: true},
		{SectionPath: "Application.Display", SettingName: "language", Value: "en", DefaultValue: "en", IsPublic: true},
	}

	now := time.Now()
	s.products[1] = catalog.Product{
		ID: 1, SKU: "SKU-0001", Name: "Sample Widget", Price: 19.90,
		Stock: 120, Category: "widgets", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	s.nextID = 2
}

func (s *Store) CreateUser(username, password string, profile account.Profile) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return fmt.Errorf("user %s already exists", username)
	}
	profile.UserID = fmt.Sprintf("%d", s.nextUser)
	profile.Username = username
	s.nextUser++
	s.users[username] = &userRecord{passwordHash: hash, profile: profile}
	return nil
}

// Authenticate verifies the password and returns the profile.
func (s *Store) Authenticate(username, password string) (*account.Profile, bool) {
	s.mu.RLock()
	rec, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)) != nil {
		return nil, false
	}
	p := rec.profile
	return &p, true
}

func (s *Store) Profile(username string) (*account.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[username]
	if !ok {
		return nil, false
	}
	p := rec.profile
	return &p, true
}

func (s *Store) UpdateProfile(username string, req account.UpdateProfileRequest) (*account.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[username]
	if !ok {
		return nil, false
	}
	if req.Email != nil {
		rec.profile.Email = *req.Email
	}
	if req.FullName != nil {
		rec.profile.FullName = *req.FullName
	}
	if req.Phone != nil {
		rec.profile.Phone = *req.Phone
	}
	if req.Language != nil {
		rec.profile.Language = *req.Language
	}
	if req.Timezone != nil {
		rec.profile.Timezone = *req.Timezone
	}
	p := rec.profile
	return &p, true
}

func (s *Store) Settings(sectionPath string) ([]settingsdom.Setting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.settings[sectionPath]
	if !ok {
		return nil, false
	}
	out := make([]settingsdom.Setting, len(data))
	copy(out, data)
	return out, true
}

func (s *Store) UpdateSetting(sectionPath, settingName string, value interface{}) (*settingsdom.Setting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.settings[sectionPath]
	if !ok {
		return nil, false
	}
	for i := range data {
		if data[i].SettingName == settingName {
			data[i].Value = value
			out := data[i]
			return &out, true
		}
	}
	return nil, false
}

func (s *Store) ListProducts() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out
}

func (s *Store) GetProduct(id int64) (*catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (s *Store) CreateProduct(req catalog.CreateProductRequest) catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p := catalog.Product{
		ID:          s.nextID,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		IsActive:    req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.products[p.ID] = p
	s.nextID++
	return p
}

func (s *Store) UpdateProduct(id int64, req catalog.UpdateProductRequest) (*catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, false
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = time.Now()
	s.products[id] = p
	return &p, true
}

func (s *Store) DeleteProduct(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return false
	}
	delete(s.products, id)
	return true
}
