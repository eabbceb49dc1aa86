package discovery

import "github.com/Moirius/La-Station-Prospection/internal/model"

// categoryKeywords maps a business category to the keyword variations used to
// widen its search coverage. Keywords are French, matching the target market.
var categoryKeywords = map[string][]string{
	"bar":            {"cocktail", "pub", "brasserie", "terrasse", "happy hour", "live music"},
	"restaurant":     {"cocktail", "pub", "brasserie", "terrasse", "happy hour", "live music"},
	"cafe":           {"cocktail", "pub", "brasserie", "terrasse", "happy hour", "live music"},
	"florist":        {"fleurs", "bouquet", "plantes", "livraison fleurs", "composition florale"},
	"beauty_salon":   {"coiffure", "manucure", "esthétique", "soin visage"},
	"spa":            {"massage", "bien-être", "relaxation", "thérapie"},
	"hotel":          {"chambre", "hébergement", "réservation", "confort"},
	"lodging":        {"chambre", "hébergement", "réservation", "confort"},
	"gym":            {"musculation", "cardio", "cours collectifs", "entraînement"},
	"fitness_center": {"musculation", "cardio", "cours collectifs", "entraînement"},
	"pharmacy":       {"médicament", "parapharmacie", "conseil santé"},
	"bakery":         {"pain", "viennoiserie", "pâtisserie"},
}

// BuildStrategies generates the ordered search variations for a category.
// Precise mode starts with two keyword-less searches (base radius, then
// doubled) followed by category-specific keyword variants. Wide mode searches
// on the raw keyword only, at base and doubled radius.
func BuildStrategies(category string, radius int, wide bool) []model.SearchStrategy {
	if wide {
		return []model.SearchStrategy{
			{Keyword: category, Radius: radius},
			{Keyword: category, Radius: radius * 2},
		}
	}

	strategies := []model.SearchStrategy{
		{Category: category, Radius: radius},
		{Category: category, Radius: radius * 2},
	}

	keywords, ok := categoryKeywords[category]
	if !ok {
		keywords = []string{category, "service", "professionnel"}
	}
	for _, kw := range keywords {
		strategies = append(strategies, model.SearchStrategy{
			Category: category,
			Keyword:  kw,
			Radius:   radius,
		})
	}
	return strategies
}

// priorityTypes orders maps place tags by how well they identify a business.
var priorityTypes = []string{
	"restaurant", "cafe", "bar", "store", "shopping_mall", "supermarket",
	"beauty_salon", "hair_care", "spa", "gym", "fitness_center",
	"dentist", "doctor", "hospital", "pharmacy", "veterinary_care",
	"lawyer", "accounting", "real_estate_agency", "insurance_agency",
	"bank", "car_dealer", "car_repair", "gas_station", "hotel", "lodging",
}

// PrimaryType picks the most meaningful category from a place's type tags.
// The searched category wins when present; otherwise the first priority match,
// then the first tag, then "unknown".
func PrimaryType(types []string, searchType string) string {
	if len(types) == 0 {
		return "unknown"
	}
	if searchType != "" {
		for _, t := range types {
			if t == searchType {
				return searchType
			}
		}
	}
	for _, p := range priorityTypes {
		for _, t := range types {
			if t == p {
				return p
			}
		}
	}
	return types[0]
}
