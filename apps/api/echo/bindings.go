package echoapi

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field1,-field2`; a leading "-" sorts descending.
// Fields not in allowed are ignored.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" || (len(allowed) > 0 && !core.StringInSlice(field, allowed)) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindBody decodes the JSON request body into v. Path and query params are left out.
func bindBody(ctx echo.Context, v interface{}) error {
	req := ctx.Request()
	if req.ContentLength == 0 || req.Body == nil {
		return core.ErrEmptyBody
	}
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return core.ErrInvalidData.WithDetails(map[string]string{
				typeErr.Field: "must be of type " + typeErr.Type.String(),
			})
		}
		if err == io.EOF {
			return core.ErrEmptyBody
		}
		return core.ErrInvalidData.WithDetails(err.Error())
	}
	return nil
}
