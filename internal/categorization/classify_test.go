package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_FirstMatchingCategoryWins(t *testing.T) {
	assert.Equal(t, "dessert", classify([]string{"flour", "sugar", "vanilla extract"}))
}

func TestClassify_FallsBackToUncategorized(t *testing.T) {
	assert.Equal(t, "uncategorized", classify([]string{"water", "salt"}))
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, "seafood", classify([]string{"Fresh SALMON fillet"}))
}
