package form

import (
	"strings"
	"testing"

	"sentimentreviews/reviews-cli/internal/app/cli/client"

	"github.com/stretchr/testify/assert"
)

func TestReviewForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    ReviewForm
		wantErr string
	}{
		{"valid", ReviewForm{ProductName: "Phone", ReviewText: "Great phone overall", Rating: 5}, ""},
		{"text exactly 10", ReviewForm{ProductName: "Phone", ReviewText: "0123456789", Rating: 1}, ""},
		{"short text", ReviewForm{ProductName: "Phone", ReviewText: "too short", Rating: 3}, "Review must be at least 10 characters long"},
		{"long text", ReviewForm{ProductName: "Phone", ReviewText: strings.Repeat("a", 501), Rating: 3}, "Review must be at most 500 characters long"},
		{"no product", ReviewForm{ProductName: "   ", ReviewText: "Great phone overall", Rating: 3}, "Product name is required"},
		{"rating zero", ReviewForm{ProductName: "Phone", ReviewText: "Great phone overall"}, "Rating must be between 1 and 5"},
		{"rating six", ReviewForm{ProductName: "Phone", ReviewText: "Great phone overall", Rating: 6}, "Rating must be between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestReviewForm_InputTrimsProduct(t *testing.T) {
	input := ReviewForm{ProductName: "  Phone ", ReviewText: "Great phone overall", Rating: 4}.Input()

	assert.Equal(t, client.ReviewInput{ProductName: "Phone", ReviewText: "Great phone overall", Rating: 4}, input)
}

func TestEditForm_Validate(t *testing.T) {
	assert.ErrorIs(t, EditForm{}.Validate(), ErrNothingToUpdate)
	assert.NoError(t, EditForm{Rating: 2}.Validate())
	assert.NoError(t, EditForm{ProductName: "Laptop"}.Validate())
	assert.EqualError(t, EditForm{ReviewText: "short"}.Validate(), "Review must be at least 10 characters long")
	assert.EqualError(t, EditForm{Rating: 9}.Validate(), "Rating must be between 1 and 5")
}

func TestSignupForm_Validate(t *testing.T) {
	valid := SignupForm{Name: "Ann", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, valid.Validate())

	mismatch := valid
	mismatch.ConfirmPassword = "secret2"
	assert.EqualError(t, mismatch.Validate(), "Passwords do not match")

	short := valid
	short.Password = "abc"
	short.ConfirmPassword = "abc"
	assert.EqualError(t, short.Validate(), "Password must be at least 6 characters")

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.EqualError(t, badEmail.Validate(), "Email is invalid")

	noName := valid
	noName.Name = ""
	assert.EqualError(t, noName.Validate(), "Name is required")
}

func TestLoginForm_Validate(t *testing.T) {
	assert.NoError(t, LoginForm{Email: "ann@example.com", Password: "x"}.Validate())
	assert.EqualError(t, LoginForm{Email: "ann@example.com"}.Validate(), "Password is required")
}
