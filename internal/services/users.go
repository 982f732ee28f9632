package services

import (
	"context"
	"errors"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/VtlBz/foodgram-project/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const badCredentialsMessage = "Невозможно войти с предоставленными учетными данными."

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username,notme"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// SetPasswordInput is the password change payload.
type SetPasswordInput struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// Register creates an active user. Taken usernames and emails are reported
// per field.
func Register(ctx context.Context, db *gorm.DB, in RegisterInput) (UserCreated, error) {
	if err := validation.Struct(in); err != nil {
		return UserCreated{}, err
	}

	fields := types.FieldErrors{}
	var taken int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&taken).Error; err != nil {
		return UserCreated{}, err
	}
	if taken > 0 {
		fields.Add("username", "Пользователь с таким username уже существует.")
	}
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&taken).Error; err != nil {
		return UserCreated{}, err
	}
	if taken > 0 {
		fields.Add("email", "Пользователь с таким email уже существует.")
	}
	if len(fields) > 0 {
		return UserCreated{}, types.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserCreated{}, err
	}

	user := models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hash),
		IsActive:  true,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration
			return UserCreated{}, types.FieldError("username", "Пользователь с таким username или email уже существует.")
		}
		return UserCreated{}, err
	}
	return createdOf(&user), nil
}

// GetUser loads a user by id.
func GetUser(ctx context.Context, db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User
	if err := quiet(ctx, db).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// GetProfile returns the profile of user id as seen by viewer (nil for
// anonymous).
func GetProfile(ctx context.Context, db *gorm.DB, viewer *models.User, id uint64) (UserProfile, error) {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return UserProfile{}, err
	}
	subscribed, err := subscribedTo(ctx, db, viewer, []uint64{user.ID})
	if err != nil {
		return UserProfile{}, err
	}
	return profileOf(user, subscribed[user.ID]), nil
}

// Me returns the profile of the viewer.
func Me(viewer *models.User) UserProfile {
	return profileOf(viewer, false)
}

// ListUsers returns one page of users ordered by username.
func ListUsers(ctx context.Context, db *gorm.DB, viewer *models.User, page Page) (PageResult[UserProfile], error) {
	var result PageResult[UserProfile]
	base := db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})

	if err := base.Count(&result.Count).Error; err != nil {
		return result, err
	}

	var users []models.User
	if err := base.Order("username").Order("id").
		Limit(page.Size).Offset(page.Offset()).
		Find(&users).Error; err != nil {
		return result, err
	}

	ids := make([]uint64, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := subscribedTo(ctx, db, viewer, ids)
	if err != nil {
		return result, err
	}

	result.Items = make([]UserProfile, len(users))
	for i := range users {
		result.Items[i] = profileOf(&users[i], subscribed[users[i].ID])
	}
	return result, nil
}

// SetPassword replaces the password of user after checking the current one.
func SetPassword(ctx context.Context, db *gorm.DB, user *models.User, in SetPasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return types.FieldError("current_password", "Неверный пароль.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(user).Update("password", string(hash)).Error; err != nil {
		return err
	}
	return nil
}

// CheckCredentials returns the active user with the given email and
// password.
func CheckCredentials(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, types.InvalidOperation(badCredentialsMessage)
	}
	var user models.User
	err := quiet(ctx, db).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.InvalidOperation(badCredentialsMessage)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, types.InvalidOperation(badCredentialsMessage)
	}
	return &user, nil
}
