package actioncard

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caplc/backend/core"
)

func Test_checkBatches(t *testing.T) {
	cards := []Card{
		{ID: "c3", Number: 3, Type: TypeCollective},
		{ID: "c1", Number: 1, Type: TypeIndividual},
		{ID: "c2", Number: 2, Type: TypeIndividual},
		{ID: "c4", Number: 4, Type: TypeCollective},
	}

	tests := []struct {
		name    string
		batches []NewBatch
		wantErr error
	}{
		{
			name: "valid",
			batches: []NewBatch{
				{Name: "A", Type: TypeIndividual, ActionCardIDs: []string{"c1", "c2"}},
				{Name: "B", Type: TypeCollective, ActionCardIDs: []string{"c3"}},
				{Name: "C", Type: TypeCollective, ActionCardIDs: []string{"c4", "c3"}},
			},
		},
		{
			name: "unknown card",
			batches: []NewBatch{
				{Name: "A", Type: TypeIndividual, ActionCardIDs: []string{"c1", "lol"}},
			},
			wantErr: core.NewInvalidDataError("actionCardId lol does not exist. (A)"),
		},
		{
			name: "mixed types",
			batches: []NewBatch{
				{Name: "A", Type: TypeIndividual, ActionCardIDs: []string{"c1", "c3"}},
			},
			wantErr: core.NewInvalidDataError("Action cards within the same batch must be of the same type. (A)"),
		},
		{
			name: "missing cards sorted by number",
			batches: []NewBatch{
				{Name: "A", Type: TypeIndividual, ActionCardIDs: []string{"c2"}},
			},
			wantErr: core.NewInvalidDataError("All actions cards need to be present. Missing c1, c3, c4"),
		},
		{
			name:    "no batches",
			wantErr: core.NewInvalidDataError("All actions cards need to be present. Missing c1, c2, c3, c4"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkBatches(cards, tt.batches)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestValidateBatches(t *testing.T) {
	validate := validator.New()

	batches := []NewBatch{{Name: "  Batch 1 ", Type: " Individual", ActionCardIDs: []string{"c1"}}}
	assert.NoError(t, ValidateBatches(validate, batches))
	assert.Equal(t, "Batch 1", batches[0].Name)
	assert.Equal(t, TypeIndividual, batches[0].Type)

	assert.Error(t, ValidateBatches(validate, []NewBatch{{Name: "A", Type: "lol", ActionCardIDs: []string{}}}))
	assert.Error(t, ValidateBatches(validate, []NewBatch{{Name: "", Type: TypeCollective, ActionCardIDs: []string{}}}))
	assert.Error(t, ValidateBatches(validate, []NewBatch{{Name: "A", Type: TypeCollective}}))
}

func TestService_importInvalidType(t *testing.T) {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	ctx := context.Background()
	svc := NewService(nil)

	tests := []struct {
		name    string
		run     func() error
		wantErr string
	}{
		{
			name:    "card",
			run:     func() error { return svc.ImportCards(ctx, false, Card{Number: 7, Name: "Bike", Type: "lol"}) },
			wantErr: `card 7 (Bike): invalid type "lol"`,
		},
		{
			name:    "batch",
			run:     func() error { return svc.ImportBatches(ctx, false, Batch{Name: "B1", Type: "lol"}) },
			wantErr: `batch B1: invalid type "lol"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
			_, ok := err.(stackTracer)
			assert.True(t, ok, "error should carry a stack trace")
		})
	}
}
