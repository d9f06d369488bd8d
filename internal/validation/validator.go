// Package validation checks customer and product input before it is written.
// Everything here is side-effect free except the email uniqueness lookup,
// which reads storage through the EmailLookup it is given.
package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"crm/internal/domain"
	apperrors "crm/internal/errors"
	"crm/internal/money"
)

// maxPriceFractionDigits caps the decimal places a price literal may carry
// before it is rounded to money.Scale.
const maxPriceFractionDigits = 18

var (
	internationalPhone = regexp.MustCompile(`^\+?\d{7,15}$`)
	localPhone         = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
)

type CustomerInput struct {
	Name  string
	Email string
	Phone *string
}

type ProductInput struct {
	Name  string
	Price string
	Stock *int
}

// ProductValues are the parsed, canonical values of a valid ProductInput.
type ProductValues struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// EmailLookup finds the customer owning email. It returns (nil, nil) when
// no customer has it.
type EmailLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type EmailLookupFunc func(ctx context.Context, email string) (*domain.Customer, error)

func (f EmailLookupFunc) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return f(ctx, email)
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidPhone reports whether phone matches one of the accepted formats.
// The empty string is valid.
func ValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return internationalPhone.MatchString(phone) || localPhone.MatchString(phone)
}

// CustomerFields checks name, email syntax and phone format.
func (v *Validator) CustomerFields(in CustomerInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.NewFieldError(apperrors.ReasonInvalidName, "name", "name is required")
	}

	if err := v.validate.Var(in.Email, "required,email"); err != nil {
		return apperrors.NewFieldError(apperrors.ReasonInvalidEmailFormat, "email", "invalid email format")
	}

	if in.Phone != nil && !ValidPhone(*in.Phone) {
		return apperrors.NewFieldError(apperrors.ReasonInvalidPhoneFormat, "phone", "invalid phone format, use +1234567890 or 123-456-7890")
	}

	return nil
}

// Customer runs CustomerFields and then checks that no other customer owns
// the email. excludeID skips the customer being updated; pass 0 on create.
func (v *Validator) Customer(ctx context.Context, in CustomerInput, lookup EmailLookup, excludeID int64) error {
	if err := v.CustomerFields(in); err != nil {
		return err
	}

	existing, err := lookup.FindByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return apperrors.NewDuplicateError("email", in.Email, nil)
	}

	return nil
}

// Product parses and checks a product input. The returned price is rounded
// to the canonical scale and must stay strictly positive after rounding.
func (v *Validator) Product(in ProductInput) (ProductValues, error) {
	if strings.TrimSpace(in.Name) == "" {
		return ProductValues{}, apperrors.NewFieldError(apperrors.ReasonInvalidName, "name", "name is required")
	}

	price, err := money.Parse(strings.TrimSpace(in.Price))
	if err != nil {
		return ProductValues{}, apperrors.NewFieldError(apperrors.ReasonInvalidPrice, "price", "price must be a valid decimal")
	}
	if !price.IsPositive() {
		return ProductValues{}, apperrors.NewFieldError(apperrors.ReasonInvalidPrice, "price", "price must be positive")
	}
	if err := checkPriceDigits(price); err != nil {
		return ProductValues{}, err
	}
	if price.Exponent() < -maxPriceFractionDigits {
		return ProductValues{}, apperrors.NewFieldError(apperrors.ReasonInvalidPrice, "price", "price has too many decimal places")
	}

	price = money.Canonical(price)
	if !price.IsPositive() {
		return ProductValues{}, apperrors.NewFieldError(apperrors.ReasonInvalidPrice, "price", "price must be positive")
	}
	// rounding can carry into a new integer digit: 99999999.995 -> 100000000.00
	if err := checkPriceDigits(price); err != nil {
		return ProductValues{}, err
	}

	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return ProductValues{}, apperrors.NewFieldError(apperrors.ReasonInvalidStock, "stock", "stock cannot be negative")
	}

	return ProductValues{Name: strings.TrimSpace(in.Name), Price: price, Stock: stock}, nil
}

func checkPriceDigits(price decimal.Decimal) error {
	maxInt := int64(money.Precision - money.Scale)
	if money.IntegerDigits(price) > maxInt {
		return apperrors.NewFieldError(apperrors.ReasonInvalidPrice, "price", fmt.Sprintf("price must have at most %d integer digits", maxInt))
	}
	return nil
}
