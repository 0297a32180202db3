package categorization

import "strings"

// keywordCategories is a small, closed keyword table: the first category
// whose keyword list matches any ingredient name wins, in table order. A
// note matching nothing falls back to "uncategorized" rather than erroring
// — categorization is an enrichment, never a blocking classification.
var keywordCategories = []struct {
	name     string
	keywords []string
}{
	{"dessert", []string{"sugar", "chocolate", "frosting", "vanilla"}},
	{"baking", []string{"flour", "yeast", "baking powder", "baking soda"}},
	{"vegetarian", []string{"tofu", "lentil", "chickpea", "beans"}},
	{"seafood", []string{"shrimp", "salmon", "fish", "crab"}},
	{"meat", []string{"chicken", "beef", "pork", "bacon"}},
}

func classify(ingredients []string) string {
	for _, c := range keywordCategories {
		for _, ing := range ingredients {
			lower := strings.ToLower(ing)
			for _, kw := range c.keywords {
				if strings.Contains(lower, kw) {
					return c.name
				}
			}
		}
	}
	return "uncategorized"
}
