package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"inscricao/pkg/cpf"
)

// NewValidator builds the request validator with the domain rules the struct
// tags reference. Registration errors are impossible for non-empty tag names,
// so they are ignored.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cpfdigits", func(fl validator.FieldLevel) bool {
		return cpf.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	})
	_ = v.RegisterValidation("brphone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("birthdate", func(fl validator.FieldLevel) bool {
		return ValidBirthDate(fl.Field().String(), time.Now())
	})
	return v
}

// ValidName requires at least 3 non-whitespace characters.
func ValidName(name string) bool {
	return len(strings.TrimSpace(name)) >= 3
}

// ValidPhone accepts 10 digits (landline) or 11 (mobile with the leading 9),
// ignoring mask characters.
func ValidPhone(formatted string) bool {
	n := len(cpf.Normalize(formatted))
	return n == 10 || n == 11
}

// ValidBirthDate checks a DD/MM/AAAA (or bare DDMMAAAA) value against the
// real calendar: month 1-12, day within the month, year in [1900, now].
func ValidBirthDate(formatted string, now time.Time) bool {
	d := cpf.Normalize(formatted)
	if len(d) != 8 {
		return false
	}
	day, _ := strconv.Atoi(d[0:2])
	month, _ := strconv.Atoi(d[2:4])
	year, _ := strconv.Atoi(d[4:8])
	if year < 1900 || year > now.Year() {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	// Day 0 of the next month is the last day of this one.
	maxDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day >= 1 && day <= maxDay
}
