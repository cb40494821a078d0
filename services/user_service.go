package services

import (
	"errors"

	"lumen-notes/lumen/broker"
	"lumen-notes/lumen/database"
	"lumen-notes/lumen/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserServiceInterface interface {
	CreateUser(db *database.Database, user models.User) (models.User, error)
	GetUserById(db *database.Database, id string) (models.User, error)
	DeleteUser(db *database.Database, id string) error
}

type UserService struct{}

func (s *UserService) CreateUser(db *database.Database, user models.User) (models.User, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.User{}, tx.Error
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}
	if count > 0 {
		tx.Rollback()
		return models.User{}, ErrResourceExists
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	event, err := models.NewEvent(
		string(broker.UserCreated),
		"user",
		"create",
		user.ID.String(),
		map[string]interface{}{
			"user_id": user.ID.String(),
			"email":   user.Email,
		},
	)
	if err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	return user, nil
}

func (s *UserService) GetUserById(db *database.Database, id string) (models.User, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(db *database.Database, id string) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		return err
	}

	event, err := models.NewEvent(
		string(broker.UserDeleted),
		"user",
		"delete",
		user.ID.String(),
		map[string]interface{}{
			"user_id": user.ID.String(),
		},
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

var UserServiceInstance UserServiceInterface = &UserService{}
