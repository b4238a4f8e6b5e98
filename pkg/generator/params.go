package generator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
)

// Params is the input record for [Generate]. The validate tags mirror the
// ranges the interactive form offers; Generate itself trusts its input.
type Params struct {
	InputNodes  int             `json:"inputNodeCount" validate:"min=1,max=8"`
	OutputNodes int             `json:"outputNodeCount" validate:"min=1,max=8"`
	Connections int             `json:"connectionCount" validate:"min=0,max=8"`
	MeshPoints  int             `json:"meshPointCount" validate:"min=0,max=9"`
	Gates       int             `json:"gateCount" validate:"min=0,max=4"`
	Variant     circuit.Variant `json:"variant" validate:"required,oneof=logic matrix hybrid"`
	Color       string          `json:"color" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Height      float64         `json:"height" validate:"gte=0.1,lte=0.5"`
}

// DefaultParams returns the parameters the card form starts from.
func DefaultParams() Params {
	return Params{
		InputNodes:  4,
		OutputNodes: 4,
		Connections: 4,
		MeshPoints:  4,
		Gates:       1,
		Variant:     circuit.VariantMatrix,
		Color:       "#5a6bff",
		Name:        "Custom Card",
		Description: "User generated card",
		Height:      0.2,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks p against the ranges accepted from users. Connection counts
// above min(InputNodes, OutputNodes) are accepted; Generate drops the excess.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInternal, err, "validate parameters")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(errors.ErrCodeInvalidParams, "%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
