package services

import (
	"time"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// UserSeeder creates the roster's login accounts at startup. The
// roster is configuration; accounts are never self-registered.
type UserSeeder struct {
	userRepo UserSeederRepository
}

// UserSeederRepository is the storage surface seeding needs
type UserSeederRepository interface {
	GetUserByName(name string) (*models.User, error)
	CreateUser(user *models.User) error
}

// NewUserSeeder creates a new user seeder
func NewUserSeeder(userRepo UserSeederRepository) *UserSeeder {
	return &UserSeeder{
		userRepo: userRepo,
	}
}

// SeedUsers ensures every roster member has an account. Existing
// accounts are left untouched; passwords start at a shared default and
// are expected to be changed out of band.
func (s *UserSeeder) SeedUsers(pickers []string, blazinPicker, defaultPassword string) error {
	type seedUser struct {
		name       string
		blazinOnly bool
	}

	seeds := make([]seedUser, 0, len(pickers)+1)
	for _, name := range pickers {
		seeds = append(seeds, seedUser{name: name})
	}
	if blazinPicker != "" {
		seeds = append(seeds, seedUser{name: blazinPicker, blazinOnly: true})
	}

	var existingCount, createdCount int

	for id, seed := range seeds {
		existing, err := s.userRepo.GetUserByName(seed.name)
		if err == nil && existing != nil {
			existingCount++
			continue
		}

		user := &models.User{
			ID:         id,
			Name:       seed.name,
			BlazinOnly: seed.blazinOnly,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}

		if err := user.HashPassword(defaultPassword); err != nil {
			logging.Errorf("Failed to hash password for %s: %v", seed.name, err)
			continue
		}

		if err := s.userRepo.CreateUser(user); err != nil {
			logging.Errorf("Failed to create user %s: %v", seed.name, err)
			continue
		}

		logging.Infof("Created user %s with ID %d", seed.name, id)
		createdCount++
	}

	if existingCount > 0 || createdCount > 0 {
		logging.Infof("Completed Seeding Users - %d existing, %d created", existingCount, createdCount)
	}
	return nil
}
