package python

import (
	"github.com/tminor/lspytype/widget"
)

// patternTypes may sit between a target name and the statement that binds it.
var patternTypes = []string{
	"pattern_list", "tuple_pattern", "list_pattern", "list_splat_pattern",
	"parenthesized_expression", "tuple", "list", "as_pattern_target",
}

// Kind implements widget.Node
func (node *Node) Kind() widget.Kind {
	switch node.Type {
	case "identifier":
		if node.declaresNonVariable() {
			return widget.KindOther
		}
		if node.IsTarget() {
			return widget.KindAssignmentTarget
		}
		return widget.KindReference
	case "attribute":
		if node.IsTarget() {
			return widget.KindAssignmentTarget
		}
		return widget.KindReference
	}
	return widget.KindOther
}

// declaresNonVariable reports identifiers that name something other than a
// variable: definitions, parameters, keyword arguments, imports and
// attribute members.
func (node *Node) declaresNonVariable() bool {
	parent := node.parent
	if parent == nil {
		return false
	}
	switch parent.Type {
	case "attribute":
		return node.Field == "attribute"
	case "function_definition", "class_definition":
		return node.Field == "name"
	case "keyword_argument":
		return node.Field == "name"
	case "default_parameter", "typed_default_parameter":
		return node.Field == "name"
	case "parameters", "lambda_parameters", "typed_parameter":
		return true
	case "list_splat_pattern", "dictionary_splat_pattern":
		return parent.parent.Is("parameters", "lambda_parameters", "typed_parameter")
	case "dotted_name", "aliased_import", "import_statement", "import_from_statement",
		"global_statement", "nonlocal_statement":
		return true
	}
	return false
}

// IsTarget reports whether node is bound by the statement it appears in,
// looking through destructuring patterns.
func (node *Node) IsTarget() bool {
	child := node
	parent := node.parent
	for parent != nil && parent.Is(patternTypes...) {
		if parent.Type == "as_pattern_target" {
			return true
		}
		child, parent = parent, parent.parent
	}
	if parent == nil {
		return false
	}

	switch parent.Type {
	case "assignment", "augmented_assignment", "for_statement", "for_in_clause":
		return child.Field == "left"
	case "named_expression":
		return child.Field == "name"
	case "except_clause":
		return child.Field == "alias"
	case "as_pattern":
		return child.Field == "alias"
	}
	return false
}
