package validate

import "testing"

type sampleRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Status   string `json:"status" validate:"omitempty,oneof=pending completed"`
}

func TestStructValid(t *testing.T) {
	req := sampleRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "longenough",
		Status:   "pending",
	}

	if fields := Struct(&req); fields != nil {
		t.Errorf("expected no errors, got %v", fields)
	}
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	req := sampleRequest{Email: "not-an-email", Password: "short"}

	fields := Struct(&req)
	if fields == nil {
		t.Fatal("expected validation errors")
	}

	byField := make(map[string]string)
	for _, fe := range fields {
		byField[fe.Field] = fe.Message
	}

	if byField["name"] != "is required" {
		t.Errorf("name: got %q", byField["name"])
	}
	if byField["email"] != "must be a valid email address" {
		t.Errorf("email: got %q", byField["email"])
	}
	if byField["password"] != "must be at least 8 characters" {
		t.Errorf("password: got %q", byField["password"])
	}
}

func TestStructOneof(t *testing.T) {
	req := sampleRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "longenough",
		Status:   "bogus",
	}

	fields := Struct(&req)
	if len(fields) != 1 {
		t.Fatalf("expected one error, got %v", fields)
	}
	if fields[0].Field != "status" {
		t.Errorf("got field %q, want status", fields[0].Field)
	}
	if fields[0].Message != "must be one of: pending, completed" {
		t.Errorf("got message %q", fields[0].Message)
	}
}
