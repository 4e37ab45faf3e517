package python

import (
	"github.com/tminor/lspytype/widget"
)

// member is an attribute found on a source class.
type member struct {
	typ        *Type
	definition *Node
}

// member looks up name on instances of source classes and on the classes
// themselves. Builtin receivers have no members here.
func (inf *inference) member(receiver *Type, name string) *member {
	switch {
	case receiver == nil:
		return nil
	case receiver.class != nil:
		return inf.classMember(receiver.class, name, make(map[*Node]bool))
	case receiver.Is("type") && len(receiver.Args) == 1 && receiver.Args[0].class != nil:
		return inf.classMember(receiver.Args[0].class, name, make(map[*Node]bool))
	}
	return nil
}

// classMember searches the class body, then attributes assigned through
// the receiver parameter in its methods, then the base classes.
func (inf *inference) classMember(class *Node, name string, seen map[*Node]bool) *member {
	if seen[class] {
		return nil
	}
	seen[class] = true

	if bindings, _, _ := scopeBindings(class, name); len(bindings) > 0 {
		b := bindings[len(bindings)-1]
		return &member{typ: inf.binding(b), definition: b.Definition()}
	}

	if targets := instanceAttributes(class, name); len(targets) > 0 {
		types := make([]*Type, len(targets))
		for i, target := range targets {
			types[i] = inf.target(target)
		}
		return &member{typ: unite(types...), definition: targets[0].Child("attribute")}
	}

	if superclasses := class.Child("superclasses"); superclasses != nil {
		for _, base := range superclasses.NamedChildren() {
			if base.Is("keyword_argument") {
				continue
			}
			if t := inf.expr(base); t.Is("type") && len(t.Args) == 1 && t.Args[0].class != nil {
				if m := inf.classMember(t.Args[0].class, name, seen); m != nil {
					return m
				}
			}
		}
	}
	return nil
}

// instanceAttributes returns the "self.name = ..." targets in the methods of
// class. Augmented assignments do not declare attributes.
func instanceAttributes(class *Node, name string) []*Node {
	body := class.Child("body")
	if body == nil {
		return nil
	}
	var targets []*Node
	for _, statement := range body.NamedChildren() {
		method := statement
		if method.Is("decorated_definition") {
			method = method.Child("definition")
		}
		if !method.Is("function_definition") {
			continue
		}
		parameters := method.Child("parameters")
		if parameters == nil {
			continue
		}
		names := parameterNames(parameters)
		if len(names) == 0 {
			continue
		}
		self := names[0].Text()

		Inspect(method.Child("body"), func(node *Node) bool {
			switch node.Type {
			case "function_definition", "class_definition", "lambda":
				return false
			case "attribute":
				object, attribute := node.Child("object"), node.Child("attribute")
				if object.Is("identifier") && object.Text() == self &&
					attribute != nil && attribute.Text() == name &&
					node.Kind() == widget.KindAssignmentTarget && !augmented(node) {
					targets = append(targets, node)
				}
			}
			return true
		})
	}
	return targets
}

func augmented(target *Node) bool {
	parent := target.parent
	for parent.Is(patternTypes...) {
		parent = parent.parent
	}
	return parent.Is("augmented_assignment")
}
