package ingredients

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine_SplitsQuantityUnitName(t *testing.T) {
	q, u, n := parseLine("2 cups flour")
	assert.Equal(t, "2", q)
	assert.Equal(t, "cups", u)
	assert.Equal(t, "flour", n)
}

func TestParseLine_FractionalQuantity(t *testing.T) {
	q, u, n := parseLine("1/2 tsp salt")
	assert.Equal(t, "1/2", q)
	assert.Equal(t, "tsp", u)
	assert.Equal(t, "salt", n)
}

func TestParseLine_UnparsableLineKeepsWholeTextAsName(t *testing.T) {
	q, u, n := parseLine("salt to taste")
	assert.Empty(t, q)
	assert.Empty(t, u)
	assert.Equal(t, "salt to taste", n)
}
