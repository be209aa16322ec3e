package httpapi

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/manifest"
)

// OpenAPI handles GET /openapi.json with a document generated from the
// manifest, so the API description always matches the loaded contract.
func (s *Server) OpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := BuildOpenAPI(s.interp.Contract())
	writeJSON(w, s.logger, doc)
}

// BuildOpenAPI derives an OpenAPI 3 document from a manifest. Each
// command's parameters become a named schema, and the dispatch endpoint
// references them.
func BuildOpenAPI(contract *manifest.Manifest) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       contract.Name,
			Description: contract.Description,
			Version:     arbor.Version,
		},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
		Paths: openapi3.NewPaths(),
	}

	resultSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("output", openapi3.NewSchema()).
		WithProperty("exit", openapi3.NewBoolSchema())
	doc.Components.Schemas["Result"] = openapi3.NewSchemaRef("", resultSchema)

	for i := range contract.Commands {
		cmd := &contract.Commands[i]
		doc.Components.Schemas[schemaName(cmd.Name)] = openapi3.NewSchemaRef("", commandSchema(cmd))
	}

	dispatchBody := openapi3.NewObjectSchema().
		WithProperty("session", openapi3.NewStringSchema()).
		WithProperty("input", openapi3.NewStringSchema()).
		WithProperty("command", openapi3.NewObjectSchema().
			WithProperty("name", openapi3.NewStringSchema()).
			WithProperty("args", openapi3.NewObjectSchema()))
	dispatchBody.Required = []string{"session"}

	doc.Paths.Set("/dispatch", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "dispatch",
			Summary:     "Parse, validate and execute one command",
			RequestBody: &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithRequired(true).
					WithJSONSchema(dispatchBody),
			},
			Responses: jsonResponse("The command outcome", openapi3.NewSchemaRef("#/components/schemas/Result", nil)),
		},
	})
	doc.Paths.Set("/commands", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listCommands",
			Summary:     "The manifest's command catalog",
			Responses:   jsonResponse("Declared commands and parameters", openapi3.NewSchemaRef("", openapi3.NewObjectSchema())),
		},
	})
	doc.Paths.Set("/sessions", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listSessions",
			Summary:     "IDs of persisted sessions",
			Responses:   jsonResponse("Session IDs", openapi3.NewSchemaRef("", openapi3.NewObjectSchema())),
		},
	})
	doc.Paths.Set("/healthz", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "health",
			Summary:     "Liveness probe",
			Responses:   jsonResponse("Health status", openapi3.NewSchemaRef("", openapi3.NewObjectSchema())),
		},
	})

	return doc
}

func jsonResponse(description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	return openapi3.NewResponses(openapi3.WithStatus(200, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(description).
			WithJSONSchemaRef(schema),
	}))
}

func schemaName(command string) string {
	if command == "" {
		return "Args"
	}
	return strings.ToUpper(command[:1]) + command[1:] + "Args"
}

func commandSchema(cmd *manifest.CommandSpec) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	obj.Description = cmd.Description

	var required []string
	for _, name := range cmd.ParamOrder() {
		pspec := cmd.Parameters[name]
		obj.WithPropertyRef(name, openapi3.NewSchemaRef("", paramSchema(pspec)))
		if pspec.Required {
			required = append(required, name)
		}
	}
	obj.Required = required
	return obj
}

func paramSchema(pspec manifest.ParamSpec) *openapi3.Schema {
	parts := strings.Split(pspec.Type, "|")
	if len(parts) > 1 {
		variants := make(openapi3.SchemaRefs, 0, len(parts))
		for _, part := range parts {
			variants = append(variants, openapi3.NewSchemaRef("", typeSchema(strings.TrimSpace(part))))
		}
		return &openapi3.Schema{OneOf: variants, Description: pspec.Description}
	}

	sch := typeSchema(strings.TrimSpace(pspec.Type))
	sch.Description = pspec.Description
	if pspec.Min != nil {
		sch.Min = pspec.Min
	}
	if pspec.Max != nil {
		sch.Max = pspec.Max
	}
	if pspec.MinLength != nil {
		sch.MinLength = uint64(*pspec.MinLength)
	}
	if pspec.MaxLength != nil {
		maxLen := uint64(*pspec.MaxLength)
		sch.MaxLength = &maxLen
	}
	if pspec.Pattern != "" {
		sch.Pattern = pspec.Pattern
	}
	if len(pspec.Enum) > 0 {
		sch.Enum = pspec.Enum
	}
	if pspec.Default != nil {
		sch.Default = pspec.Default
	}
	return sch
}

func typeSchema(name string) *openapi3.Schema {
	switch name {
	case "string", "enum":
		return openapi3.NewStringSchema()
	case "integer":
		return openapi3.NewIntegerSchema()
	case "number":
		return openapi3.NewFloat64Schema()
	case "boolean":
		return openapi3.NewBoolSchema()
	case "array":
		return openapi3.NewArraySchema().WithItems(openapi3.NewSchema())
	case "buffer":
		return openapi3.NewBytesSchema()
	case "object":
		return openapi3.NewObjectSchema()
	default:
		return openapi3.NewSchema()
	}
}
