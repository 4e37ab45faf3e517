package python

import (
	"github.com/tminor/lspytype/widget"
)

type bindingKind int

const (
	bindTarget bindingKind = iota
	bindParameter
	bindFunction
	bindClass
	bindImport
	bindFromImport
)

// binding is one place a name gets bound within a scope.
type binding struct {
	kind bindingKind
	// node is the identifier for targets and parameters, the definition
	// for functions and classes and the import statement for imports.
	node *Node
	// at is the offset from which the binding is visible.
	at int
}

// Definition returns the node an editor should jump to for the binding.
func (b *binding) Definition() *Node {
	switch b.kind {
	case bindFunction, bindClass:
		if name := b.node.Child("name"); name != nil {
			return name
		}
	}
	return b.node
}

var comprehensionTypes = []string{
	"list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression",
}

// scopeOf returns the node whose scope node belongs to: the module, a
// function, lambda or class body, or a comprehension.
func scopeOf(node *Node) *Node {
	child := node
	for parent := node.parent; parent != nil; child, parent = parent, parent.parent {
		switch parent.Type {
		case "module":
			return parent
		case "function_definition", "lambda":
			if child.Field == "body" || child.Field == "parameters" {
				return parent
			}
		case "class_definition":
			if child.Field == "body" {
				return parent
			}
		default:
			if parent.Is(comprehensionTypes...) {
				return parent
			}
		}
	}
	return nil
}

func moduleOf(node *Node) *Node {
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// scopeBindings collects the bindings of name made directly in scope.
// global and nonlocal report declarations that redirect the name.
func scopeBindings(scope *Node, name string) (bindings []*binding, global bool, nonlocal bool) {
	var visit func(node *Node) bool
	visit = func(node *Node) bool {
		if node != scope {
			switch node.Type {
			case "function_definition", "class_definition":
				if nameNode := node.Child("name"); nameNode != nil && nameNode.Text() == name {
					kind := bindFunction
					if node.Type == "class_definition" {
						kind = bindClass
					}
					bindings = append(bindings, &binding{kind: kind, node: node, at: node.End})
				}
				// Decorators, defaults and bases are evaluated here, bodies are not.
				for _, child := range node.Children {
					if child.Field != "body" && child.Field != "parameters" && child.Field != "name" {
						Inspect(child, visit)
					}
				}
				return false
			case "lambda":
				return false
			}
			if node.Is(comprehensionTypes...) {
				return false
			}
		}

		switch node.Type {
		case "identifier":
			if node.Text() != name {
				return false
			}
			if node.Kind() == widget.KindAssignmentTarget {
				bindings = append(bindings, &binding{kind: bindTarget, node: node, at: bindingPoint(node)})
			}
			return false
		case "parameters", "lambda_parameters":
			if node.parent == scope {
				for _, parameter := range parameterNames(node) {
					if parameter.Text() == name {
						bindings = append(bindings, &binding{kind: bindParameter, node: parameter, at: -1})
					}
				}
			}
			// Default values belong to the enclosing scope.
			return false
		case "import_statement":
			for _, imported := range importedNames(node) {
				if imported.Text() == name {
					bindings = append(bindings, &binding{kind: bindImport, node: imported, at: node.End})
				}
			}
			return false
		case "import_from_statement":
			for _, imported := range importedNames(node) {
				if imported.Text() == name {
					bindings = append(bindings, &binding{kind: bindFromImport, node: imported, at: node.End})
				}
			}
			return false
		case "global_statement", "nonlocal_statement":
			for _, declared := range node.NamedChildren() {
				if declared.Text() == name {
					if node.Type == "global_statement" {
						global = true
					} else {
						nonlocal = true
					}
				}
			}
			return false
		}
		return true
	}

	switch scope.Type {
	case "function_definition", "lambda":
		if parameters := scope.Child("parameters"); parameters != nil {
			visit(parameters)
		}
		if body := scope.Child("body"); body != nil {
			Inspect(body, visit)
		}
	case "class_definition":
		if body := scope.Child("body"); body != nil {
			Inspect(body, visit)
		}
	default:
		for _, child := range scope.Children {
			Inspect(child, visit)
		}
	}
	return bindings, global, nonlocal
}

// bindingPoint is the offset after which a target's new value is visible:
// the end of the binding statement, so "x = x + 1" reads the old x.
func bindingPoint(target *Node) int {
	for current := target.parent; current != nil; current = current.parent {
		switch current.Type {
		case "assignment", "augmented_assignment", "named_expression":
			// Chained assignments nest; the outermost statement wins.
			outer := current
			for outer.parent.Is("assignment") {
				outer = outer.parent
			}
			return outer.End
		case "for_statement", "for_in_clause":
			if right := current.Child("right"); right != nil {
				return right.End
			}
			return current.End
		case "with_item", "except_clause", "as_pattern":
			return target.End
		}
	}
	return target.End
}

// parameterNames returns the identifiers declared by a parameter list.
func parameterNames(parameters *Node) []*Node {
	var names []*Node
	for _, parameter := range parameters.NamedChildren() {
		switch parameter.Type {
		case "identifier":
			names = append(names, parameter)
		case "default_parameter", "typed_default_parameter":
			if name := parameter.Child("name"); name != nil {
				names = append(names, name)
			}
		case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
			for _, child := range parameter.NamedChildren() {
				if child.Type == "identifier" {
					names = append(names, child)
				} else if child.Is("list_splat_pattern", "dictionary_splat_pattern") {
					names = append(names, child.NamedChildren()...)
				}
			}
		}
	}
	return names
}

// importedNames returns the nodes whose text is the name bound by an
// import: the alias, the imported name, or the top package of a dotted
// module path.
func importedNames(statement *Node) []*Node {
	var names []*Node
	for _, child := range statement.Children {
		if child.Field != "name" {
			continue
		}
		switch child.Type {
		case "aliased_import":
			if alias := child.Child("alias"); alias != nil {
				names = append(names, alias)
			}
		case "dotted_name":
			if parts := child.NamedChildren(); len(parts) > 0 {
				names = append(names, parts[0])
			}
		}
	}
	return names
}

// lookup resolves name as seen from the reference at ref.
func lookup(name string, ref *Node) *binding {
	scope := scopeOf(ref)
	position := ref.Begin
	innermost := true
	for scope != nil {
		// Class bodies are only visible to code directly inside them.
		if scope.Type == "class_definition" && !innermost {
			scope = scopeOf(scope)
			continue
		}

		bindings, global, nonlocal := scopeBindings(scope, name)
		switch {
		case global && scope.Type != "module":
			scope = moduleOf(scope)
			innermost = false
			continue
		case nonlocal:
			scope = scopeOf(scope)
			innermost = false
			continue
		}

		if len(bindings) > 0 {
			// Comprehension targets are bound before the body runs.
			if !innermost || scope.Is(comprehensionTypes...) {
				return bindings[len(bindings)-1]
			}
			var found *binding
			for _, b := range bindings {
				if b.at <= position {
					found = b
				}
			}
			// A local name used before assignment is unbound, never global.
			return found
		}

		scope = scopeOf(scope)
		innermost = false
	}
	return nil
}
