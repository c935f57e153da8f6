package genapidoc

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
)

const (
	securityCookie = "cookieAuth"
	securityBearer = "bearerAuth"
)

// Param is a path or query parameter of a Route.
type Param struct {
	Name        string
	In          string // openapi3.ParameterInPath or openapi3.ParameterInQuery
	Type        string
	Description string
	Example     interface{}
}

// Route describes one operation, request and response are example values of the real handler types.
type Route struct {
	Name        string // also the operation id and schema prefix
	Method      string
	Path        string
	Tag         string
	Summary     string
	Description string
	Auth        bool
	Params      []Param
	Request     interface{}
	Status      int
	Response    interface{}
	Errors      []int
}

func pathParamID(desc string) Param {
	return Param{Name: "id", In: openapi3.ParameterInPath, Type: "string", Description: desc, Example: "412709836219138049"}
}

// AddRoute generates the schemas of route into components and adds the operation into paths.
func AddRoute(ctx context.Context, components openapi3.Components, paths openapi3.Paths, route Route) {
	op := openapi3.NewOperation()
	op.Tags = []string{route.Tag}
	op.Summary = route.Summary
	op.Description = route.Description
	op.OperationID = route.Name

	for _, p := range route.Params {
		var param *openapi3.Parameter
		switch p.In {
		case openapi3.ParameterInPath:
			param = openapi3.NewPathParameter(p.Name)
		default:
			param = openapi3.NewQueryParameter(p.Name)
		}

		param.Description = p.Description
		param.Schema = &openapi3.SchemaRef{Value: &openapi3.Schema{Type: p.Type}}
		param.Example = p.Example
		op.AddParameter(param)
	}

	if route.Request != nil {
		outReq := MustNewSchemaGenerator(ctx, route.Name+".", route.Request)
		for s, ref := range outReq.Schemas {
			components.Schemas[s] = ref
		}

		reqBody := openapi3.NewRequestBody().WithRequired(true)
		reqBody.WithJSONSchemaRef(&openapi3.SchemaRef{
			Ref: fmt.Sprintf("#/components/schemas/%s", outReq.ParentSchemaName),
		})

		components.RequestBodies[route.Name] = &openapi3.RequestBodyRef{Value: reqBody}
		op.RequestBody = &openapi3.RequestBodyRef{
			Ref: fmt.Sprintf("#/components/requestBodies/%s", route.Name),
		}
	}

	outResp := MustNewSchemaGenerator(ctx, fmt.Sprintf("%s.Resp%d.", route.Name, route.Status), route.Response)
	for s, ref := range outResp.Schemas {
		components.Schemas[s] = ref
	}

	op.AddResponse(route.Status, openapi3.NewResponse().WithJSONSchemaRef(
		&openapi3.SchemaRef{
			Ref: fmt.Sprintf("#/components/schemas/%s", outResp.ParentSchemaName),
		},
	).WithDescription(route.Summary))

	errKinds := route.Errors
	if route.Auth {
		errKinds = append([]int{401}, errKinds...)
	}

	for _, status := range append(errKinds, 500) {
		op.AddResponse(status, openapi3.NewResponse().WithJSONSchemaRef(
			&openapi3.SchemaRef{Ref: "#/components/schemas/Error"},
		).WithDescription(errorDescription(status)))
	}

	if route.Auth {
		op.Security = &openapi3.SecurityRequirements{
			{securityCookie: []string{}},
			{securityBearer: []string{}},
		}
	}

	item, exist := paths[route.Path]
	if !exist {
		item = &openapi3.PathItem{}
		paths[route.Path] = item
	}

	item.SetOperation(route.Method, op)
}

func errorDescription(status int) string {
	for _, reason := range respbuilder.ReasonMap {
		if reason.HTTPStatus == status {
			return reason.Message
		}
	}

	return "error"
}
