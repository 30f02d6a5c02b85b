package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

// BuildOpenAPISpec describes the service's HTTP surface so clients can
// generate bindings without reading the handlers.
func BuildOpenAPISpec(appName, appURL string) *openapi3.T {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       appName,
			Version:     "1.0.0",
			Description: "Email OTP issuance and verification.",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{URL: appURL},
		},
		Paths: openapi3.NewPaths(),
	}

	spec.Paths.Set("/otp/send", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "sendOtp",
			Summary:     "Issue a one-time passcode to an email address",
			Tags:        []string{"otp"},
			RequestBody: jsonBody(map[string]any{"email": "user@example.com"}),
			Responses: responses(map[int]string{
				http.StatusAccepted:            "Code accepted for delivery",
				http.StatusBadRequest:          "Validation failure",
				http.StatusTooManyRequests:     "Daily OTP quota reached",
				http.StatusBadGateway:          "Email delivery failed",
				http.StatusInternalServerError: "Unexpected error",
			}),
		},
	})

	spec.Paths.Set("/otp/verify", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "verifyOtp",
			Summary:     "Verify a previously issued passcode",
			Tags:        []string{"otp"},
			RequestBody: jsonBody(map[string]any{"email": "user@example.com", "code": "123456"}),
			Responses: responses(map[int]string{
				http.StatusOK:                  "Code verified",
				http.StatusBadRequest:          "Code invalid, expired or not requested",
				http.StatusInternalServerError: "Unexpected error",
			}),
		},
	})

	spec.Paths.Set("/email/welcome", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "sendWelcomeEmail",
			Summary:     "Send a transactional welcome email",
			Tags:        []string{"email"},
			RequestBody: jsonBody(map[string]any{
				"email":     "user@example.com",
				"subject":   "Welcome",
				"text_body": "Hello!",
			}),
			Responses: responses(map[int]string{
				http.StatusAccepted:            "Message accepted for delivery",
				http.StatusBadRequest:          "Validation failure",
				http.StatusBadGateway:          "Email delivery failed",
				http.StatusInternalServerError: "Unexpected error",
			}),
		},
	})

	return spec
}

func jsonBody(example map[string]any) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Example: example,
					Schema: &openapi3.SchemaRef{
						Value: &openapi3.Schema{Type: &openapi3.Types{"object"}},
					},
				},
			},
		},
	}
}

func responses(byStatus map[int]string) *openapi3.Responses {
	out := openapi3.NewResponses()
	for status, description := range byStatus {
		desc := description
		out.Set(strconv.Itoa(status), &openapi3.ResponseRef{
			Value: &openapi3.Response{Description: &desc},
		})
	}
	return out
}

func OpenAPIJSONHandler(spec *openapi3.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := spec.MarshalJSON()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render OpenAPI spec")
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
	}
}

func OpenAPIYAMLHandler(spec *openapi3.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := spec.MarshalJSON()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render OpenAPI spec")
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render OpenAPI spec")
		}

		out, err := yaml.Marshal(doc)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render OpenAPI spec")
		}
		return c.Blob(http.StatusOK, "application/yaml", out)
	}
}
