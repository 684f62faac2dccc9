package traffic

import (
	"errors"
	"testing"
	"time"

	"callcenter-platform/internal/calls"
)

func TestDefaultProfile_IsValid(t *testing.T) {
	if err := DefaultProfile().Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestValidate_RejectsBadIntentSum(t *testing.T) {
	p := DefaultProfile()
	p.Intents = IntentDistribution{
		{Intent: calls.IntentRDV, Probability: 0.5},
		{Intent: calls.IntentInfo, Probability: 0.4},
	}
	err := p.Validate()
	if err == nil {
		t.Fatalf("expected error for probabilities summing to 0.9")
	}
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestValidate_ToleratesFloatAccumulation(t *testing.T) {
	p := DefaultProfile()
	third := 1.0 / 3.0
	p.Intents = IntentDistribution{
		{Intent: calls.IntentRDV, Probability: third},
		{Intent: calls.IntentInfo, Probability: third},
		{Intent: calls.IntentUrgence, Probability: third},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected 3*(1/3) to validate, got %v", err)
	}
}

func TestValidate_RejectsEmptyDistribution(t *testing.T) {
	p := DefaultProfile()
	p.Intents = nil
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for empty distribution")
	}
}

func TestValidate_RejectsInvertedBand(t *testing.T) {
	p := DefaultProfile()
	p.Bands[time.Monday] = Band{MinMultiplier: 2, MaxMultiplier: 1}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for min > max band")
	}
}

func TestValidate_RejectsUnknownIntent(t *testing.T) {
	p := DefaultProfile()
	p.Intents = IntentDistribution{{Intent: "FAX", Probability: 1}}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for unknown intent")
	}
}
