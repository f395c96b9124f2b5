package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/xeipuuv/gojsonschema"
)

const (
	businessSchema = `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"phone": {"type": "string"},
			"address": {"type": "string"},
			"visits_required": {"type": "integer"},
			"reward_description": {"type": "string"},
			"sms_enabled": {"type": "boolean"},
			"reward_expiry_days": {"type": "integer"}
		}
	}`

	newBusinessSchema = `{
		"allOf": [` + businessSchema + `],
		"required": ["name"]
	}`

	customerSchema = `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"phone": {"type": "string"},
			"email": {"type": "string"},
			"notes": {"type": "string"},
			"sms_opt_in": {"type": "boolean"}
		}
	}`

	newCustomerSchema = `{
		"allOf": [` + customerSchema + `],
		"required": ["name", "phone"]
	}`

	checkInSchema = `{
		"type": "object",
		"properties": {
			"amount_spent": {"type": "integer"},
			"service_type": {"type": ["string", "null"]},
			"notes": {"type": "string"},
			"rating": {"type": ["integer", "null"]}
		}
	}`

	smsSchema = `{
		"type": "object",
		"properties": {
			"customer_id": {"type": ["integer", "null"], "minimum": 1},
			"phone": {"type": "string"},
			"message": {"type": "string"},
			"type": {"enum": ["welcome", "reward_earned", "reward_reminder", "reminder", "promotion"]}
		},
		"required": ["phone", "message", "type"]
	}`
)

var (
	newBusinessBody    = mustSchema(newBusinessSchema)
	updateBusinessBody = mustSchema(businessSchema)
	newCustomerBody    = mustSchema(newCustomerSchema)
	updateCustomerBody = mustSchema(customerSchema)
	checkInBody        = mustSchema(checkInSchema)
	smsBody            = mustSchema(smsSchema)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// decodeBody validates the request body against schema and decodes it into
// dst. An empty body is treated as {} when allowEmpty is set.
func decodeBody(c echo.Context, schema *gojsonschema.Schema, dst any, allowEmpty bool) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		if !allowEmpty {
			return fmt.Errorf("request body is required")
		}
		body = []byte("{}")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid request payload: %s", strings.Join(errs, "; "))
	}

	if err = json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	return nil
}
