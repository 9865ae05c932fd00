// Package form проверяет ввод пользователя до отправки в API
package form

import (
	"errors"
	"strings"

	"sentimentreviews/reviews-cli/internal/app/cli/client"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ReviewForm - форма создания отзыва
type ReviewForm struct {
	ProductName string `validate:"required,max=200"`
	ReviewText  string `validate:"required,min=10,max=500"`
	Rating      int    `validate:"required,min=1,max=5"`
}

func (f ReviewForm) Validate() error {
	f.ProductName = strings.TrimSpace(f.ProductName)
	if err := validate.Struct(f); err != nil {
		return translate(err)
	}
	return nil
}

func (f ReviewForm) Input() client.ReviewInput {
	return client.ReviewInput{
		ProductName: strings.TrimSpace(f.ProductName),
		ReviewText:  f.ReviewText,
		Rating:      f.Rating,
	}
}

// EditForm - частичное обновление, пустые поля не меняются
type EditForm struct {
	ProductName string `validate:"omitempty,max=200"`
	ReviewText  string `validate:"omitempty,min=10,max=500"`
	Rating      int    `validate:"omitempty,min=1,max=5"`
}

var ErrNothingToUpdate = errors.New("Nothing to update: set product, text or rating")

func (f EditForm) Validate() error {
	if strings.TrimSpace(f.ProductName) == "" && f.ReviewText == "" && f.Rating == 0 {
		return ErrNothingToUpdate
	}
	if err := validate.Struct(f); err != nil {
		return translate(err)
	}
	return nil
}

func (f EditForm) Input() client.ReviewInput {
	return client.ReviewInput{
		ProductName: strings.TrimSpace(f.ProductName),
		ReviewText:  f.ReviewText,
		Rating:      f.Rating,
	}
}

type SignupForm struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

func (f SignupForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return translate(err)
	}
	return nil
}

func (f SignupForm) Request() client.SignupRequest {
	return client.SignupRequest{
		Name:            strings.TrimSpace(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
}

type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (f LoginForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return translate(err)
	}
	return nil
}

// translate превращает первую ошибку валидатора в сообщение для пользователя
func translate(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errors.New("Validation failed")
	}

	fe := validationErrors[0]
	switch fe.Field() + "." + fe.Tag() {
	case "ReviewText.min":
		return errors.New("Review must be at least 10 characters long")
	case "ReviewText.max":
		return errors.New("Review must be at most 500 characters long")
	case "ReviewText.required":
		return errors.New("Review text is required")
	case "ProductName.required":
		return errors.New("Product name is required")
	case "ProductName.max":
		return errors.New("Product name must be at most 200 characters long")
	case "Rating.required", "Rating.min", "Rating.max":
		return errors.New("Rating must be between 1 and 5")
	case "Password.min":
		return errors.New("Password must be at least 6 characters")
	case "ConfirmPassword.eqfield":
		return errors.New("Passwords do not match")
	case "Email.email":
		return errors.New("Email is invalid")
	}
	return errors.New(fe.Field() + " is " + fe.Tag())
}
