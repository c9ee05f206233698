package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"

	"github.com/dshills/goattr/pkg/types"
)

// Parser handles AST-based parsing of Go source files
type Parser struct {
	fset *token.FileSet
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{
		fset: token.NewFileSet(),
	}
}

// ParseFile parses a Go source file and extracts type and method declarations
// together with their descriptor directives
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseSource(filePath, content), nil
}

// ParseSource parses already loaded source. Syntax errors are recorded on the
// result and whatever partial AST the parser produced is still extracted.
func (p *Parser) ParseSource(filePath string, content []byte) *types.ParseResult {
	result := &types.ParseResult{}

	file, err := parser.ParseFile(p.fset, filePath, content, parser.ParseComments)
	if err != nil {
		result.AddError(filePath, 0, 0, fmt.Sprintf("syntax error: %v", err))
	}

	if file == nil {
		return result
	}

	if file.Name != nil {
		result.PackageName = file.Name.Name
	}
	result.Imports = p.extractImports(file)

	extractor := &declExtractor{
		fset:     p.fset,
		filePath: filePath,
		result:   result,
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			extractor.extractMethod(d)
		case *ast.GenDecl:
			extractor.extractGenDecl(d)
		}
	}

	return result
}

// extractImports extracts import statements from the AST
func (p *Parser) extractImports(file *ast.File) []types.Import {
	imports := make([]types.Import, 0, len(file.Imports))

	for _, imp := range file.Imports {
		importSpec := types.Import{
			Path: strings.Trim(imp.Path.Value, `"`),
		}

		if imp.Name != nil {
			importSpec.Alias = imp.Name.Name
		}

		imports = append(imports, importSpec)
	}

	return imports
}

// declExtractor walks top-level declarations only; directives never attach
// to nested or local types
type declExtractor struct {
	fset     *token.FileSet
	filePath string
	result   *types.ParseResult
}

// extractMethod extracts method declarations; plain functions are skipped
func (e *declExtractor) extractMethod(funcDecl *ast.FuncDecl) {
	if funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
		return
	}

	receiver := receiverTypeName(funcDecl.Recv.List[0].Type)
	if receiver == "" {
		return
	}

	method := types.MethodDecl{
		Name:       funcDecl.Name.Name,
		Receiver:   receiver,
		File:       e.filePath,
		DocComment: docText(funcDecl.Doc),
		Directives: e.extractDirectives(funcDecl.Doc),
		Start:      e.positionFromToken(funcDecl.Pos()),
	}
	e.result.Methods = append(e.result.Methods, method)
}

// extractGenDecl extracts type declarations
func (e *declExtractor) extractGenDecl(genDecl *ast.GenDecl) {
	if genDecl.Tok != token.TYPE {
		return
	}

	for _, spec := range genDecl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		// A lone spec inherits the doc comment of its declaration
		doc := typeSpec.Doc
		if doc == nil && len(genDecl.Specs) == 1 {
			doc = genDecl.Doc
		}
		e.extractTypeSpec(typeSpec, doc)
	}
}

// extractTypeSpec extracts a struct, interface, or other named type
func (e *declExtractor) extractTypeSpec(typeSpec *ast.TypeSpec, doc *ast.CommentGroup) {
	decl := types.TypeDecl{
		Name:       typeSpec.Name.Name,
		File:       e.filePath,
		DocComment: docText(doc),
		Directives: e.extractDirectives(doc),
		Start:      e.positionFromToken(typeSpec.Pos()),
	}

	switch t := typeSpec.Type.(type) {
	case *ast.StructType:
		decl.Kind = types.KindStruct
		decl.Embeds, decl.Fields = structMembers(t)
	case *ast.InterfaceType:
		decl.Kind = types.KindInterface
	default:
		decl.Kind = types.KindType
	}

	e.result.Types = append(e.result.Types, decl)
}

// extractDirectives parses every "//@" line of a doc comment. Malformed
// directives are recorded as errors and skipped.
func (e *declExtractor) extractDirectives(doc *ast.CommentGroup) []types.Directive {
	if doc == nil {
		return nil
	}

	var directives []types.Directive
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, DirectivePrefix)
		if !ok {
			continue
		}

		pos := e.fset.Position(c.Pos())
		directive, err := ParseDirective(text)
		if err != nil {
			e.result.AddError(e.filePath, pos.Line, pos.Column, err.Error())
			continue
		}
		directive.Line = pos.Line
		directives = append(directives, directive)
	}

	return directives
}

// positionFromToken converts a token position to our Position type
func (e *declExtractor) positionFromToken(pos token.Pos) types.Position {
	position := e.fset.Position(pos)
	return types.Position{
		Line:   position.Line,
		Column: position.Column,
	}
}

// structMembers splits struct fields into embedded type references and
// named field names, both in declaration order
func structMembers(structType *ast.StructType) ([]types.TypeRef, []string) {
	if structType.Fields == nil {
		return nil, nil
	}

	var embeds []types.TypeRef
	var fields []string
	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			if ref, ok := typeRef(field.Type); ok {
				embeds = append(embeds, ref)
			}
			continue
		}
		for _, name := range field.Names {
			fields = append(fields, name.Name)
		}
	}

	return embeds, fields
}

// typeRef resolves an embedded field type to a named reference
func typeRef(expr ast.Expr) (types.TypeRef, bool) {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return typeRef(t.X)
	case *ast.Ident:
		return types.TypeRef{Name: t.Name}, true
	case *ast.SelectorExpr:
		if pkg, ok := t.X.(*ast.Ident); ok {
			return types.TypeRef{Qualifier: pkg.Name, Name: t.Sel.Name}, true
		}
	case *ast.IndexExpr:
		return typeRef(t.X)
	case *ast.IndexListExpr:
		return typeRef(t.X)
	}
	return types.TypeRef{}, false
}

// receiverTypeName extracts the receiver type name from a method
func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	}
	return ""
}

// docText returns the doc comment without directive lines
func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if strings.HasPrefix(line, "@") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
