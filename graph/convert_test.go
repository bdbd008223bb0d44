package graph

import (
	"testing"

	"github.com/eyss21/projekt/graph/model"
	"github.com/eyss21/projekt/internal/models"
)

func strPtr(s string) *string { return &s }

func TestToRegisterInput(t *testing.T) {
	in := model.RegisterInput{
		Email:       "jan@example.com",
		Password:    "secret",
		City:        strPtr("Gdansk"),
		CompanyName: strPtr("Kurier24"),
	}

	out := toRegisterInput(in)

	if out.Email != "jan@example.com" || out.Password != "secret" {
		t.Errorf("credentials not carried over: %+v", out)
	}
	if out.City != "Gdansk" || out.CompanyName != "Kurier24" {
		t.Errorf("optional fields not carried over: %+v", out)
	}
	if out.Street != "" || out.PhoneNumber != "" {
		t.Errorf("missing optional fields should be empty, got %+v", out)
	}
}

func TestScheduleTimesRoundTrip(t *testing.T) {
	departure, err := parseTimeOfDay("14:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arrival, err := parseTimeOfDay("14:25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := toSchedule(models.Schedule{
		ID:            3,
		Stop:          "Torun",
		ArrivalTime:   arrival,
		DepartureTime: departure,
		OrderNumber:   2,
	})

	if out.DepartureTime != "14:30" || out.ArrivalTime != "14:25" {
		t.Errorf("times = %s / %s, want 14:30 / 14:25", out.DepartureTime, out.ArrivalTime)
	}
	if out.RelationID != nil {
		t.Error("unassigned schedule should have nil relation id")
	}

	if _, err := parseTimeOfDay("25:99"); err == nil {
		t.Error("expected error for an out-of-range time")
	}
}
