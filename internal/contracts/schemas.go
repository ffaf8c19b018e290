// Package contracts проверяет ответы бэкенда по встроенным JSON-схемам до декодирования в DTO.
package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"real-estate-web/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const responsesDir = "responses"

// Имена схем ответов. Совпадают с ключами, которые строит responseKey.
const (
	PropertiesPage = "PropertiesPageResponse"
	WishlistPage   = "WishlistPageResponse"
	Property       = "PropertyResponse"
	AuthSession    = "AuthSessionResponse"
	InquiryReceipt = "InquiryReceiptResponse"
)

var (
	loadOnce        sync.Once
	loadErr         error
	compiledSchemas map[string]*jsonschema.Schema
)

func load() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	compiled := make(map[string]*jsonschema.Schema)

	var files []string
	err := fs.WalkDir(schemas.SchemasFS, responsesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		file, err := schemas.SchemasFS.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := compiler.AddResource(p, file); err != nil {
			return fmt.Errorf("add schema resource %s: %w", p, err)
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		loadErr = fmt.Errorf("walk response schemas: %w", err)
		return
	}

	// Компилируем вторым проходом, когда все ресурсы уже добавлены.
	for _, p := range files {
		schema, err := compiler.Compile(p)
		if err != nil {
			loadErr = fmt.Errorf("compile schema %s: %w", p, err)
			return
		}
		compiled[responseKey(p)] = schema
	}
	compiledSchemas = compiled
}

// responseKey преобразует "responses/properties-page.json" в "PropertiesPageResponse".
func responseKey(p string) string {
	name := strings.TrimSuffix(path.Base(p), ".json")
	caser := cases.Title(language.English)

	var b strings.Builder
	for _, part := range strings.Split(name, "-") {
		b.WriteString(caser.String(part))
	}
	b.WriteString("Response")
	return b.String()
}

// ValidateResponse проверяет тело ответа по схеме name.
func ValidateResponse(name string, body []byte) error {
	loadOnce.Do(load)
	if loadErr != nil {
		return loadErr
	}
	schema, ok := compiledSchemas[name]
	if !ok {
		return fmt.Errorf("schema for response '%s' not found", name)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("response body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// Names возвращает ключи всех загруженных схем.
func Names() ([]string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	names := make([]string, 0, len(compiledSchemas))
	for k := range compiledSchemas {
		names = append(names, k)
	}
	return names, nil
}
