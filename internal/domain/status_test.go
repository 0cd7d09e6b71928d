package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		from    string
		to      string
		wantErr bool
	}{
		{"event pending to completed", KindEvent, StatusPending, StatusCompleted, false},
		{"event pending to excused", KindEvent, StatusPending, StatusExcused, false},
		{"training pending to excused", KindTraining, StatusPending, StatusExcused, false},
		{"equipment cannot be excused", KindEquipment, StatusPending, StatusExcused, true},
		{"policy cannot be excused", KindPolicy, StatusPending, StatusExcused, true},
		{"policy acknowledged", KindPolicy, StatusPending, StatusCompleted, false},
		{"completed is terminal", KindEvent, StatusCompleted, StatusExcused, true},
		{"excused is terminal", KindTraining, StatusExcused, StatusCompleted, true},
		{"back to pending rejected", KindEvent, StatusPending, StatusPending, true},
		{"unknown target rejected", KindEvent, StatusPending, "archived", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.kind, tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, ValidKind(k))
	}
	assert.False(t, ValidKind("vehicle"))
}
