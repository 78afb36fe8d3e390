// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status of a seat request. Values match the stored records.
type Status string

const (
	StatusPending   Status = "pendente"
	StatusApproved  Status = "aprovada"
	StatusConfirmed Status = "confirmada"
	StatusDenied    Status = "negada"
)

// Label is the human readable form used in listings.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusApproved:
		return "Aprovada"
	case StatusConfirmed:
		return "Confirmada"
	case StatusDenied:
		return "Negada"
	default:
		return string(s)
	}
}

// Driver operates routes.
type Driver struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	CPF       string    `json:"cpf"`
	CNH       string    `json:"cnh"`
	Phone     string    `json:"telefone,omitempty"`
	CreatedAt time.Time `json:"criadoEm"`
}

func (d Driver) EntityID() string { return d.ID }

// Guardian is responsible for one or more students.
type Guardian struct {
	ID         string    `json:"id"`
	Name       string    `json:"nome"`
	CPF        string    `json:"cpf"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"telefone,omitempty"`
	Address    string    `json:"endereco,omitempty"`
	City       string    `json:"cidade,omitempty"`
	PostalCode string    `json:"cep,omitempty"`
	CreatedAt  time.Time `json:"criadoEm"`
}

func (g Guardian) EntityID() string { return g.ID }

// Student rides the routes.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"nome"`
	Age        int       `json:"idade"`
	School     string    `json:"escola"`
	GuardianID string    `json:"responsavelId"`
	CreatedAt  time.Time `json:"criadoEm"`
}

func (s Student) EntityID() string { return s.ID }

// UnmarshalJSON accepts the age both as a number and as a string, older
// records stored the raw form value.
func (s *Student) UnmarshalJSON(data []byte) error {
	type plain Student

	aux := struct {
		*plain
		Age json.RawMessage `json:"idade"`
	}{plain: (*plain)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	age, err := parseLooseInt(aux.Age)
	if err != nil {
		return fmt.Errorf("student %s: idade: %w", s.ID, err)
	}

	s.Age = age

	return nil
}

// SeatRequest asks for a seat on a route for a student.
type SeatRequest struct {
	ID            string    `json:"id"`
	RouteID       string    `json:"rotaId"`
	StudentID     string    `json:"alunoId"`
	Status        Status    `json:"status"`
	Justification string    `json:"justificativa,omitempty"`
	Author        string    `json:"autor"`
	CreatedAt     time.Time `json:"criadoEm"`
}

func (r SeatRequest) EntityID() string { return r.ID }

// IsActive reports whether the request grants the seat.
func (r SeatRequest) IsActive() bool {
	return r.Status == StatusConfirmed || r.Status == StatusApproved
}

// User is the logged in user. There is no real authentication.
type User struct {
	Login string `json:"login"`
	Admin bool   `json:"admin"`
}

// Snapshot is the full persisted state.
type Snapshot struct {
	Drivers   []Driver      `json:"motoristas"`
	Guardians []Guardian    `json:"pais"`
	Students  []Student     `json:"alunos"`
	Routes    []Route       `json:"rotas"`
	Requests  []SeatRequest `json:"solicitacoes"`
	User      *User         `json:"usuario"`
}

// parseLooseInt reads a JSON number, a numeric string, an empty string or
// null.
func parseLooseInt(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}

	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}

		if s = strings.TrimSpace(s); s == "" {
			return 0, nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("not a number: %q", s)
		}

		n = int(f)
	}

	return n, nil
}
