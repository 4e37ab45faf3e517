package python

import (
	"strings"
)

// Unions with more members than this are reported as unknown.
const maxUnionSize = 8

// Type is an inferred Python type.
type Type struct {
	// Base is the class name, e.g. "list" or "Point".
	Base string
	// Args are generic parameters: element type of list/set, key and value
	// of dict, member types of tuple.
	Args []*Type
	// Members of a union; Base is empty for unions.
	Members []*Type

	// class is the definition of a source class this is an instance of.
	class *Node
	// function is the definition of a source function this is.
	function *Node
}

// Name implements widget.Type
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	if len(t.Members) > 0 {
		names := make([]string, len(t.Members))
		for i, member := range t.Members {
			names[i] = member.Name()
		}
		return strings.Join(names, " | ")
	}
	if len(t.Args) == 0 {
		return t.Base
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.Name()
	}
	return t.Base + "[" + strings.Join(args, ", ") + "]"
}

func (t *Type) String() string {
	return t.Name()
}

// Is reports whether t is a plain instance of the named class.
func (t *Type) Is(base string) bool {
	return t != nil && len(t.Members) == 0 && t.Base == base
}

func builtin(base string, args ...*Type) *Type {
	return &Type{Base: base, Args: args}
}

var (
	intType      = builtin("int")
	floatType    = builtin("float")
	complexType  = builtin("complex")
	boolType     = builtin("bool")
	strType      = builtin("str")
	bytesType    = builtin("bytes")
	noneType     = builtin("None")
	functionType = builtin("function")
	moduleType   = builtin("module")
)

func instanceOf(class *Node, name string) *Type {
	return &Type{Base: name, class: class}
}

func classType(class *Node, name string) *Type {
	return &Type{Base: "type", Args: []*Type{instanceOf(class, name)}}
}

func sourceFunction(definition *Node) *Type {
	return &Type{Base: functionType.Base, function: definition}
}

// unite returns the union of types. Any unknown member makes the union
// unknown; duplicates collapse; a single member is returned as is.
func unite(types ...*Type) *Type {
	var members []*Type
	seen := make(map[string]bool)
	for _, t := range types {
		if t == nil {
			return nil
		}
		flat := []*Type{t}
		if len(t.Members) > 0 {
			flat = t.Members
		}
		for _, member := range flat {
			name := member.Name()
			if seen[name] {
				continue
			}
			seen[name] = true
			members = append(members, member)
		}
	}
	switch {
	case len(members) == 0:
		return nil
	case len(members) == 1:
		return members[0]
	case len(members) > maxUnionSize:
		return nil
	}
	return &Type{Members: members}
}

// container builds list/set style generics: a bare base when the
// elements are empty or unknown.
func container(base string, elements []*Type) *Type {
	if len(elements) == 0 {
		return builtin(base)
	}
	element := unite(elements...)
	if element == nil {
		return builtin(base)
	}
	return builtin(base, element)
}

// element returns the type produced by iterating over t.
func (t *Type) element() *Type {
	if t == nil || len(t.Members) > 0 {
		return nil
	}
	switch t.Base {
	case "list", "set", "frozenset", "dict", "dict_keys", "dict_values", "Generator", "reversed":
		if len(t.Args) > 0 {
			return t.Args[0]
		}
	case "tuple":
		return unite(t.Args...)
	case "dict_items", "zip":
		if len(t.Args) > 0 {
			return builtin("tuple", t.Args...)
		}
	case "enumerate":
		if len(t.Args) == 1 {
			return builtin("tuple", intType, t.Args[0])
		}
	case "str":
		return strType
	case "bytes", "bytearray", "range":
		return intType
	}
	return nil
}

// item returns the i-th member when t is unpacked positionally.
func (t *Type) item(i int) *Type {
	if t.Is("tuple") && len(t.Args) > 0 {
		if i < len(t.Args) {
			return t.Args[i]
		}
		return nil
	}
	return t.element()
}

// numericRank orders the numeric tower; 0 means not numeric.
func numericRank(t *Type) int {
	switch {
	case t.Is("bool"):
		return 1
	case t.Is("int"):
		return 2
	case t.Is("float"):
		return 3
	case t.Is("complex"):
		return 4
	}
	return 0
}

func numericOf(rank int) *Type {
	switch rank {
	case 1, 2:
		return intType
	case 3:
		return floatType
	case 4:
		return complexType
	}
	return nil
}
