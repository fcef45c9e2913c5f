package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
)

// ErrRequiredField is returned when a required field has no matching element.
var ErrRequiredField = errors.New("required field not found")

// FieldExtractor reads a fixed list of FieldSpecs from a FieldSource.
type FieldExtractor struct {
	specs []entity.FieldSpec
}

func NewFieldExtractor(specs []entity.FieldSpec) *FieldExtractor {
	cp := make([]entity.FieldSpec, len(specs))
	copy(cp, specs)
	return &FieldExtractor{specs: cp}
}

// Extract looks up every field independently. A missing element yields the
// field's sentinel; only lookup errors and missing required fields fail the item.
func (e *FieldExtractor) Extract(ctx context.Context, src repository.FieldSource) (entity.Record, error) {
	fields := make([]entity.Field, 0, len(e.specs))
	for _, spec := range e.specs {
		value, found, err := src.Lookup(ctx, spec.Selector, spec.Attribute)
		if err != nil {
			return entity.Record{}, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		if !found {
			if spec.Required {
				return entity.Record{}, fmt.Errorf("field %q (%s): %w", spec.Name, spec.Selector, ErrRequiredField)
			}
			value = spec.SentinelValue()
		}
		fields = append(fields, entity.Field{Name: spec.Name, Value: strings.TrimSpace(value)})
	}
	return entity.NewRecord(fields...), nil
}
