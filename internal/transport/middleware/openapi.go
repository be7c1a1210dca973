package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/transport"
)

// OpenAPIValidator checks requests against the API document before they
// reach a handler. Routes the document does not describe pass through.
type OpenAPIValidator struct {
	router routers.Router
	base   *transport.BaseHandler
}

func NewOpenAPIValidator(path string, lg *slog.Logger) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return newOpenAPIValidator(loader, doc, lg)
}

// NewOpenAPIValidatorFromData is NewOpenAPIValidator for an in-memory document.
func NewOpenAPIValidatorFromData(data []byte, lg *slog.Logger) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return newOpenAPIValidator(loader, doc, lg)
}

func newOpenAPIValidator(loader *openapi3.Loader, doc *openapi3.T, lg *slog.Logger) (*OpenAPIValidator, error) {
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &OpenAPIValidator{router: router, base: transport.NewBaseHandler(lg)}, nil
}

func (v *OpenAPIValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := v.router.FindRoute(r)
		if err != nil {
			// unknown path or method: chi answers with 404/405
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         true,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.base.HandleServiceError(w, requestValidationError(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestValidationError(err error) *internal.AppError {
	var details []internal.ValidationError
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi {
			details = append(details, validationDetail(e))
		}
	} else {
		details = append(details, validationDetail(err))
	}
	return internal.NewValidationError("request does not match the API schema", internal.ErrCodeValidationFailed).
		WithDetails(internal.ValidationErrors{Errors: details})
}

func validationDetail(err error) internal.ValidationError {
	field := ""
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			field = reqErr.Parameter.Name
		case reqErr.RequestBody != nil:
			field = "body"
		}
	}
	return internal.ValidationError{
		Field:   field,
		Message: err.Error(),
		Code:    string(internal.ErrCodeValidationFailed),
	}
}
