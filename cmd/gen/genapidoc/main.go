package genapidoc

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/openapidoc/schema"
	"github.com/yusufsyaifudin/openapidoc/utils"
)

type ApiDocCfg struct {
	Title   string `validate:"required"`
	Version string `validate:"required"`
}

type ApiDoc struct {
	Config ApiDocCfg
	flags  *flag.FlagSet
	outDir string
	server string
}

var _ cli.Command = (*ApiDoc)(nil)

func NewApiDocCmd(cfg ApiDocCfg) (*ApiDoc, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("genapidocs: validation error: %w", err)
		return nil, err
	}

	a := &ApiDoc{Config: cfg}
	a.flags = flag.NewFlagSet("apidoc", flag.ContinueOnError)
	a.flags.StringVar(&a.outDir, "out", "docs", "Directory to write openapi.json and openapi.yaml")
	a.flags.StringVar(&a.server, "server", "http://localhost:4000", "Server URL listed in the document")
	return a, nil
}

func (a *ApiDoc) Help() string {
	return `Generate OpenAPI 3 document of every HTTP route.

Usage: appstore apidoc [-out docs] [-server http://localhost:4000]`
}

func (a *ApiDoc) Synopsis() string {
	return "generate OpenAPI 3 document (json and yaml)"
}

// Run .
// all error responses follow respbuilder.HTTPError{}
func (a *ApiDoc) Run(args []string) int {
	if err := a.flags.Parse(args); err != nil {
		log.Println(err)
		return 1
	}

	ctx := context.Background()
	doc := a.Document(ctx)

	j, err := doc.MarshalJSON()
	if err != nil {
		err = fmt.Errorf("cannot marshal openapi3 doc: %w", err)
		log.Println(err)
		return 1
	}

	var i interface{}
	err = json.Unmarshal(j, &i)
	if err != nil {
		err = fmt.Errorf("cannot unmarshal openapi3 doc: %w", err)
		log.Println(err)
		return 1
	}

	y, err := utils.YamlMarshalIndent(i)
	if err != nil {
		err = fmt.Errorf("cannot marshal YAML openapi3 doc: %w", err)
		log.Println(err)
		return 1
	}

	err = WriteFile(j, filepath.Join(a.outDir, "openapi.json"))
	if err != nil {
		log.Println(err)
		return 1
	}

	err = WriteFile(y, filepath.Join(a.outDir, "openapi.yaml"))
	if err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

// Document builds the OpenAPI document from Routes.
func (a *ApiDoc) Document(ctx context.Context) *openapi3.T {
	components := openapi3.Components{
		Schemas:         map[string]*openapi3.SchemaRef{},
		Parameters:      map[string]*openapi3.ParameterRef{},
		Headers:         map[string]*openapi3.HeaderRef{},
		RequestBodies:   map[string]*openapi3.RequestBodyRef{},
		Responses:       map[string]*openapi3.ResponseRef{},
		SecuritySchemes: map[string]*openapi3.SecuritySchemeRef{},
		Examples:        map[string]*openapi3.ExampleRef{},
		Links:           map[string]*openapi3.LinkRef{},
		Callbacks:       map[string]*openapi3.CallbackRef{},
	}

	components.SecuritySchemes[securityCookie] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{Type: "apiKey", In: "cookie", Name: "auth-token"},
	}
	components.SecuritySchemes[securityBearer] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}

	outErr := MustNewSchemaGenerator(ctx, "Common.", respbuilder.HTTPError{})
	for s, ref := range outErr.Schemas {
		components.Schemas[s] = ref
	}
	components.Schemas["Error"] = &openapi3.SchemaRef{
		Ref: fmt.Sprintf("#/components/schemas/%s", outErr.ParentSchemaName),
	}

	paths := openapi3.Paths{}
	for _, route := range Routes() {
		AddRoute(ctx, components, paths, route)
	}

	return &openapi3.T{
		OpenAPI:    "3.0.0",
		Components: components,
		Info: &openapi3.Info{
			Title:   a.Config.Title,
			Version: a.Config.Version,
			Contact: &openapi3.Contact{
				Name: "Yusuf",
			},
		},
		Servers: openapi3.Servers{
			{
				URL:         a.server,
				Description: "Default",
			},
		},
		Paths: paths,
	}
}

func WriteFile(content []byte, fileName string) (err error) {
	dir := filepath.Dir(fileName)
	err = os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		err = fmt.Errorf("cannot create directory %s: %w", dir, err)
		return
	}

	// truncate and overwrite the previous document
	err = os.WriteFile(fileName, content, 0o644)
	if err != nil {
		err = fmt.Errorf("cannot write file %s: %w", fileName, err)
		return
	}

	return
}

func MustNewSchemaGenerator(ctx context.Context, prefix string, value interface{}) schema.GenerateOut {
	g, err := schema.NewGenerator(schema.WithLog(io.Discard), schema.WithSchemaPrefix(prefix))
	if err != nil {
		panic(err)
	}

	out, err := g.Generate(ctx, value)
	if err != nil {
		panic(err)
	}

	return out
}
