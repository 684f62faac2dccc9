package calls

import "testing"

func TestIntentCodeValid(t *testing.T) {
	for _, i := range Intents() {
		if !i.Valid() {
			t.Fatalf("expected %q valid", i)
		}
	}
	if IntentCode("FAX").Valid() {
		t.Fatalf("unexpected valid intent")
	}
	if IntentCode("").Valid() {
		t.Fatalf("empty intent must be invalid")
	}
}

func TestStepsForIntent_FixedCounts(t *testing.T) {
	want := map[IntentCode]int{
		IntentRDV:          3,
		IntentInfo:         0,
		IntentUrgence:      2,
		IntentAnnulation:   3,
		IntentConsultation: 2,
	}
	for intent, n := range want {
		steps := StepsForIntent(intent)
		if len(steps) != n {
			t.Fatalf("%s: expected %d steps, got %d", intent, n, len(steps))
		}
	}
}

func TestStepsForIntent_ReturnsCopy(t *testing.T) {
	a := StepsForIntent(IntentRDV)
	a[0] = "mutated"
	b := StepsForIntent(IntentRDV)
	if b[0] == "mutated" {
		t.Fatalf("step list must not be shared between callers")
	}
}

func TestTransferReasons_FullEnum(t *testing.T) {
	reasons := TransferReasons()
	if len(reasons) != 11 {
		t.Fatalf("expected 11 transfer reasons, got %d", len(reasons))
	}
	seen := map[TransferReason]bool{}
	for _, r := range reasons {
		if r == "" {
			t.Fatalf("expected non-empty reason")
		}
		if seen[r] {
			t.Fatalf("duplicate reason %q", r)
		}
		seen[r] = true
	}
}

func TestTransferReasonValid(t *testing.T) {
	for _, r := range TransferReasons() {
		if !r.Valid() {
			t.Fatalf("expected %q valid", r)
		}
	}
	if TransferReason("vacation").Valid() {
		t.Fatalf("unexpected valid reason")
	}
	if TransferReason("").Valid() {
		t.Fatalf("empty reason must be invalid")
	}
}
