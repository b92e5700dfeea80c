package carbon

import (
	"github.com/go-playground/validator/v10"

	"github.com/caplc/backend/core"
)

func (nfa *NewFormAnswers) Validate(validate *validator.Validate) error {
	nfa.Email = core.CleanString(nfa.Email, true /* lower */)
	return validate.Struct(nfa)
}
