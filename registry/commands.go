// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jcodagnone/transporte/address"
)

// CreateDriverInput registers a driver.
type CreateDriverInput struct {
	Name  string `json:"nome" validate:"required"`
	CPF   string `json:"cpf" validate:"required"`
	CNH   string `json:"cnh" validate:"required"`
	Phone string `json:"telefone"`
}

// CreateGuardianInput registers a guardian.
type CreateGuardianInput struct {
	Name       string `json:"nome" validate:"required"`
	CPF        string `json:"cpf" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"telefone"`
	Address    string `json:"endereco"`
	City       string `json:"cidade"`
	PostalCode string `json:"cep"`
}

// CreateStudentInput registers a student under an existing guardian.
type CreateStudentInput struct {
	Name       string `json:"nome" validate:"required"`
	Age        int    `json:"idade" validate:"gte=0,lte=120"`
	School     string `json:"escola" validate:"required"`
	GuardianID string `json:"responsavelId" validate:"required"`
}

// CreateRouteInput registers a route for an existing driver. Both ends
// must resolve to a non-empty address.
type CreateRouteInput struct {
	Name        string         `json:"nome" validate:"required"`
	DriverID    string         `json:"motoristaId" validate:"required"`
	Schedule    string         `json:"horario" validate:"required"`
	SeatCount   int            `json:"vagas" validate:"gte=1"`
	Origin      address.Record `json:"origem"`
	Destination address.Record `json:"destino"`
}

// RequestSeatInput asks for a seat.
type RequestSeatInput struct {
	RouteID       string `json:"rotaId" validate:"required"`
	StudentID     string `json:"alunoId" validate:"required"`
	Justification string `json:"justificativa"`
}

// LoginInput is the login form. Nothing is checked beyond shape.
type LoginInput struct {
	Login    string `json:"usuario" validate:"required"`
	Password string `json:"senha" validate:"min=3"`
}

// RemovedCounts tells how many entities a delete command removed, cascades
// included.
type RemovedCounts struct {
	Drivers   int `json:"motoristas"`
	Guardians int `json:"pais"`
	Students  int `json:"alunos"`
	Routes    int `json:"rotas"`
	Requests  int `json:"solicitacoes"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// validate trims every string field of the struct pointed to by in and
// runs the validator over it.
func (r *Registry) validate(in any) error {
	trimStrings(reflect.ValueOf(in))

	err := r.validator.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}

	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func trimStrings(v reflect.Value) {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	for i := range v.NumField() {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}

		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Struct:
			trimStrings(f.Addr())
		default:
		}
	}
}

// normalizeRecord applies the form masks: postal codes become 00000-000 and
// states two upper case letters.
func normalizeRecord(rec *address.Record) {
	rec.PostalCode = normalizePostalCode(rec.PostalCode)
	rec.State = normalizeState(rec.State)
}

func normalizePostalCode(s string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)

	if len(digits) > 8 {
		digits = digits[:8]
	}

	if len(digits) > 5 {
		return digits[:5] + "-" + digits[5:]
	}

	return digits
}

func normalizeState(s string) string {
	letters := strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			return r
		}

		return -1
	}, s)

	if len(letters) > 2 {
		letters = letters[:2]
	}

	return letters
}
