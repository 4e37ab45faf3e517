package python

var builtinClasses = map[string]bool{
	"object": true, "type": true, "bool": true, "int": true, "float": true, "complex": true,
	"str": true, "bytes": true, "bytearray": true, "memoryview": true,
	"list": true, "tuple": true, "dict": true, "set": true, "frozenset": true,
	"range": true, "slice": true, "enumerate": true, "zip": true, "map": true, "filter": true,
	"reversed": true, "property": true, "staticmethod": true, "classmethod": true, "super": true,

	"BaseException": true, "Exception": true, "ArithmeticError": true, "AssertionError": true,
	"AttributeError": true, "EOFError": true, "ImportError": true, "IndexError": true,
	"KeyError": true, "KeyboardInterrupt": true, "LookupError": true, "MemoryError": true,
	"ModuleNotFoundError": true, "NameError": true, "NotImplementedError": true, "OSError": true,
	"OverflowError": true, "RecursionError": true, "RuntimeError": true, "StopIteration": true,
	"SyntaxError": true, "SystemExit": true, "TypeError": true, "ValueError": true,
	"ZeroDivisionError": true, "FileNotFoundError": true, "PermissionError": true,
	"TimeoutError": true, "UnicodeError": true, "UnicodeDecodeError": true, "UnicodeEncodeError": true,
}

var builtinFunctions = map[string]bool{
	"abs": true, "all": true, "any": true, "ascii": true, "bin": true, "callable": true,
	"chr": true, "delattr": true, "dir": true, "divmod": true, "eval": true, "exec": true,
	"format": true, "getattr": true, "globals": true, "hasattr": true, "hash": true, "hex": true,
	"id": true, "input": true, "isinstance": true, "issubclass": true, "iter": true, "len": true,
	"locals": true, "max": true, "min": true, "next": true, "oct": true, "open": true, "ord": true,
	"pow": true, "print": true, "repr": true, "round": true, "setattr": true, "sorted": true,
	"sum": true, "vars": true,
}

// builtinNames covers module attributes that are always bound.
var builtinNames = map[string]*Type{
	"__name__": strType,
	"__file__": strType,
	"__doc__":  unite(strType, noneType),
}

// Methods whose result does not depend on the receiver's parameters.
var strMethods = map[string]*Type{
	"capitalize": strType, "casefold": strType, "center": strType, "expandtabs": strType,
	"format": strType, "join": strType, "ljust": strType, "lower": strType, "lstrip": strType,
	"removeprefix": strType, "removesuffix": strType, "replace": strType, "rjust": strType,
	"rstrip": strType, "strip": strType, "swapcase": strType, "title": strType, "upper": strType,
	"zfill": strType,

	"split": builtin("list", strType), "rsplit": builtin("list", strType),
	"splitlines": builtin("list", strType), "partition": builtin("tuple", strType, strType, strType),

	"count": intType, "find": intType, "index": intType, "rfind": intType, "rindex": intType,

	"endswith": boolType, "isalnum": boolType, "isalpha": boolType, "isdecimal": boolType,
	"isdigit": boolType, "isidentifier": boolType, "islower": boolType, "isnumeric": boolType,
	"isspace": boolType, "istitle": boolType, "isupper": boolType, "startswith": boolType,

	"encode": bytesType,
}

var bytesMethods = map[string]*Type{
	"decode": strType, "hex": strType,
	"count": intType, "find": intType, "index": intType,
	"startswith": boolType, "endswith": boolType,
	"lower": bytesType, "upper": bytesType, "strip": bytesType, "replace": bytesType, "join": bytesType,
	"split": builtin("list", bytesType),
}

var numberMethods = map[string]*Type{
	"bit_length": intType, "is_integer": boolType, "hex": strType,
}

// methodResult types the call of a method on a builtin instance.
func methodResult(receiver *Type, method string) *Type {
	if receiver == nil || len(receiver.Members) > 0 {
		return nil
	}
	switch receiver.Base {
	case "str":
		return strMethods[method]
	case "bytes", "bytearray":
		return bytesMethods[method]
	case "int", "float", "bool":
		if method == "conjugate" {
			return receiver
		}
		return numberMethods[method]
	case "list":
		switch method {
		case "copy":
			return receiver
		case "count", "index":
			return intType
		case "pop":
			return receiver.element()
		case "append", "extend", "insert", "remove", "sort", "reverse", "clear":
			return noneType
		}
	case "set", "frozenset":
		switch method {
		case "copy", "union", "intersection", "difference", "symmetric_difference":
			return receiver
		case "issubset", "issuperset", "isdisjoint":
			return boolType
		case "add", "discard", "remove", "update", "clear":
			return noneType
		case "pop":
			return receiver.element()
		}
	case "dict":
		var key, value *Type
		if len(receiver.Args) == 2 {
			key, value = receiver.Args[0], receiver.Args[1]
		}
		switch method {
		case "copy":
			return receiver
		case "keys":
			return view("dict_keys", key)
		case "values":
			return view("dict_values", value)
		case "items":
			if key == nil {
				return builtin("dict_items")
			}
			return builtin("dict_items", key, value)
		case "get":
			return unite(value, noneType)
		case "pop", "setdefault":
			return value
		case "update", "clear":
			return noneType
		}
	}
	return nil
}

func view(base string, element *Type) *Type {
	if element == nil {
		return builtin(base)
	}
	return builtin(base, element)
}
