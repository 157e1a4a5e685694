package pacchetto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderSubjects(t *testing.T) {
	cfg := OrderStreamSettings{Stream: "ORDERS", Subject: "orders"}

	assert.Equal(t, "orders.finalized.abc", cfg.FinalizedSubject("abc"))
	assert.Equal(t, "orders.finalized.*", cfg.FinalizedWildcard())
}
