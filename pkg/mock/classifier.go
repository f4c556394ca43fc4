package mock

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// OpKind identifies which mock operation a request maps to.
type OpKind int

const (
	OpUnknown OpKind = iota
	OpListPosts
	OpGetPost
	OpCreatePost
	OpGetUser
)

func (k OpKind) String() string {
	switch k {
	case OpListPosts:
		return "list_posts"
	case OpGetPost:
		return "get_post"
	case OpCreatePost:
		return "create_post"
	case OpGetUser:
		return "get_user"
	default:
		return "unknown"
	}
}

// Classifier maps a query and its variables to an OpKind.
type Classifier interface {
	Classify(query string, variables map[string]any) OpKind
}

// SubstringClassifier matches on fixed fragments of the query text. Rules
// are checked in order, so a query mentioning several operations takes the
// first match.
type SubstringClassifier struct{}

func (SubstringClassifier) Classify(query string, variables map[string]any) OpKind {
	switch {
	case strings.Contains(query, "query GetPosts") || strings.Contains(query, "posts {"):
		return OpListPosts
	case strings.Contains(query, "query GetPost") && hasVar(variables, "id"):
		return OpGetPost
	case strings.Contains(query, "mutation CreatePost") && hasVar(variables, "input"):
		return OpCreatePost
	case strings.Contains(query, "query GetUser") && hasVar(variables, "id"):
		return OpGetUser
	}
	return OpUnknown
}

// ParsedClassifier parses the document and dispatches on the root field of
// its first operation. Text that does not parse is classified by Fallback.
type ParsedClassifier struct {
	Fallback Classifier
}

func (c ParsedClassifier) Classify(query string, variables map[string]any) OpKind {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil || doc == nil || len(doc.Operations) == 0 {
		return c.fallback().Classify(query, variables)
	}

	op := doc.Operations[0]
	field := rootField(op.SelectionSet)
	if field == "" {
		return OpUnknown
	}

	switch op.Operation {
	case ast.Query:
		switch {
		case field == "posts":
			return OpListPosts
		case field == "post" && hasVar(variables, "id"):
			return OpGetPost
		case field == "user" && hasVar(variables, "id"):
			return OpGetUser
		}
	case ast.Mutation:
		if field == "createPost" && hasVar(variables, "input") {
			return OpCreatePost
		}
	}
	return OpUnknown
}

func (c ParsedClassifier) fallback() Classifier {
	if c.Fallback == nil {
		return SubstringClassifier{}
	}
	return c.Fallback
}

// rootField returns the name of the first field selection, ignoring
// fragments and __typename.
func rootField(set ast.SelectionSet) string {
	for _, sel := range set {
		f, ok := sel.(*ast.Field)
		if !ok || f.Name == "__typename" {
			continue
		}
		return f.Name
	}
	return ""
}

// hasVar reports whether variables carries a usable value for key.
func hasVar(variables map[string]any, key string) bool {
	v, ok := variables[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case bool:
		return t
	}
	return true
}
