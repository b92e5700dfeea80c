package user

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/caplc/backend/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	cityTag  = "city"
	cityText = "{0} must be one of the supported cities"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// InitValidators registers the user validators. cities lists the accepted coach cities.
func InitValidators(validate *validator.Validate, translator ut.Translator, cities []string) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)

	_ = validate.RegisterValidation(cityTag, func(fl validator.FieldLevel) bool {
		return core.StringInSlice(fl.Field().String(), cities)
	})
	core.RegisterCustomTranslation(validate, translator, cityTag, cityText)

	validate.RegisterStructValidation(userStructValidation, NewCoach{}, NewModerator{}, ResetUserPassword{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

func (nc *NewCoach) Validate(validate *validator.Validate) error {
	nc.FirstName = core.CleanString(nc.FirstName)
	nc.LastName = core.CleanString(nc.LastName)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.City = core.CleanString(nc.City)
	nc.Role = core.CleanString(nc.Role, true /* lower */)
	return validate.Struct(nc)
}

func (nm *NewModerator) Validate(validate *validator.Validate) error {
	nm.FirstName = core.CleanString(nm.FirstName)
	nm.LastName = core.CleanString(nm.LastName)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	return validate.Struct(nm)
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.UID = core.CleanString(rp.UID)
	rp.Token = core.CleanString(rp.Token)
	return validate.Struct(rp)
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, role := range roles {
		if !core.StringInSlice(role, AllRoles) {
			return false
		}
	}
	return true
}

// userStructValidation applies the password policy on the structs carrying a password.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewCoach:
		validatePassword(usr.Password, sl, usr.FirstName, usr.LastName, usr.Email)
	case NewModerator:
		validatePassword(usr.Password, sl, usr.FirstName, usr.LastName, usr.Email)
	case ResetUserPassword:
		validatePassword(usr.Password, sl)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no user attrs similarity
func validatePassword(pwd string, sl validator.StructLevel, attrs ...string) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if pwd == "" { // reported by the `required` tag
		return
	}
	if len([]rune(pwd)) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}

	if PasswordTooSimilar(pwd, attrs...) {
		reportErr(pwdAttrSimTag)
	}
}

// PasswordTooSimilar reports whether pwd is too close to one of the user attributes.
func PasswordTooSimilar(pwd string, attrs ...string) bool {
	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		m := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), ""))
		if m.QuickRatio() >= pwdMaxSim {
			return true
		}
	}
	return false
}
