package calls

// Category is the semantic bucket a call lands in on the dashboard.
type Category string

const (
	CategoryRDV          Category = "rdv"
	CategoryRDVIntent    Category = "rdv_intent"
	CategoryInfo         Category = "info"
	CategoryModification Category = "modification"
	CategoryAnnulation   Category = "annulation"
	CategoryUrgence      Category = "urgence"
	CategoryAutre        Category = "autre"
)

// Categories lists every category in display order, CategoryAutre last.
func Categories() []Category {
	return []Category{
		CategoryRDV,
		CategoryRDVIntent,
		CategoryInfo,
		CategoryModification,
		CategoryAnnulation,
		CategoryUrgence,
		CategoryAutre,
	}
}

// Classify maps one event's outcome block to exactly one category.
//
// Precedence is fixed and first-match-wins:
//  1. booked appointment
//  2. appointment intent detected
//  3. information request
//  4. appointment modification
//  5. appointment cancellation
//  6. emergency flag
//  7. everything else
//
// An event that both booked an appointment and carries the emergency flag is
// therefore "rdv", not "urgence". Do not reorder these checks.
func Classify(s CallStats) Category {
	switch {
	case s.RdvBooked != 0:
		return CategoryRDV
	case hasIntent(s.Intents, SubIntentPriseRDV):
		return CategoryRDVIntent
	case hasIntent(s.Intents, SubIntentRenseigne):
		return CategoryInfo
	case hasIntent(s.Intents, SubIntentModification):
		return CategoryModification
	case hasIntent(s.Intents, SubIntentAnnulation):
		return CategoryAnnulation
	case s.Emergency:
		return CategoryUrgence
	default:
		return CategoryAutre
	}
}

func hasIntent(intents []string, want string) bool {
	for _, it := range intents {
		if it == want {
			return true
		}
	}
	return false
}
