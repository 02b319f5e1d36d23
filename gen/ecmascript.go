package gen

import (
	"fmt"
	"strings"

	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/idl"
	"github.com/teranos/idlbind/registry"
)

// TypeMapping maps primitive IDL types to converter names in the coercion
// helper module. Types outside this table resolve through the registry.
var TypeMapping = map[string]string{
	"boolean":            "boolean",
	"byte":               "byte",
	"octet":              "octet",
	"short":              "short",
	"unsigned short":     "unsigned short",
	"long":               "long",
	"unsigned long":      "unsigned long",
	"long long":          "long long",
	"unsigned long long": "unsigned long long",
	"float":              "float",
	"unrestricted float": "unrestricted float",
	"double":             "double",
	"DOMString":          "DOMString",
	"USVString":          "USVString",
	"ByteString":         "ByteString",
	"object":             "object",
}

// converterExpr returns the ECMAScript expression coercing `value` to the
// given IDL type. Nullable suffixes and typedef aliases resolve first;
// interface and dictionary types convert through the runtime binding
// registry in the utils module.
func converterExpr(idlType, value string, reg *registry.Registry) string {
	base := strings.TrimSuffix(idlType, "?")

	// Chase typedef aliases; cycles are impossible because registration
	// rejects duplicate typedef names and aliases resolve at most once per
	// distinct name.
	seen := map[string]bool{}
	for {
		td, ok := reg.Typedef(base)
		if !ok || seen[base] {
			break
		}
		seen[base] = true
		base = strings.TrimSuffix(td.Type, "?")
	}

	if base == "any" || base == "void" {
		return value
	}
	if conv, ok := TypeMapping[base]; ok {
		return fmt.Sprintf("conversions[%q](%s)", conv, value)
	}
	if kind, ok := reg.KindOf(base); ok {
		switch kind {
		case registry.KindInterface:
			return fmt.Sprintf("utils.implForWrapper(%q, %s)", base, value)
		case registry.KindDictionary:
			return fmt.Sprintf("utils.convertDictionary(%q, %s)", base, value)
		}
	}
	// Unknown type names pass through uncoerced; the host object model is
	// responsible for anything the registry cannot see.
	return value
}

// collectMembers returns the interface's own members followed by each
// mixin's members, in mixin resolution order. Mixin application happens
// here, at render time, never in the model builder.
func collectMembers(iface *registry.Interface, reg *registry.Registry) ([]memberSource, error) {
	out := make([]memberSource, 0, len(iface.Members))
	for _, m := range iface.Members {
		out = append(out, memberSource{member: m, from: iface.Name})
	}
	for _, mixinName := range iface.Mixins {
		mixin, ok := reg.Interface(mixinName)
		if !ok {
			return nil, errors.Newf("interface %q mixes in unknown interface %q", iface.Name, mixinName)
		}
		for _, m := range mixin.Members {
			out = append(out, memberSource{member: m, from: mixinName})
		}
	}
	return out, nil
}

type memberSource struct {
	member idl.Member
	from   string
}

func renderInterface(iface *registry.Interface, reg *registry.Registry) (string, error) {
	members, err := collectMembers(iface, reg)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "// Binding for interface %s\n\n", iface.Name)

	if iface.Inherits != "" {
		fmt.Fprintf(&sb, "const %s = class %s extends utils.parentClass(%q) {\n",
			iface.Name, iface.Name, iface.Inherits)
	} else {
		fmt.Fprintf(&sb, "const %s = class %s {\n", iface.Name, iface.Name)
	}

	fmt.Fprintf(&sb, "  constructor() {\n")
	fmt.Fprintf(&sb, "    throw new TypeError(\"Illegal constructor\");\n")
	fmt.Fprintf(&sb, "  }\n")

	for _, ms := range members {
		if ms.from != iface.Name {
			fmt.Fprintf(&sb, "\n  // via %s\n", ms.from)
		}
		renderInterfaceMember(&sb, ms, reg)
	}

	sb.WriteString("};\n\n")

	fmt.Fprintf(&sb, "exports.interfaceName = %q;\n", iface.Name)
	fmt.Fprintf(&sb, "exports.is = value => utils.isWrapper(%q, value);\n", iface.Name)
	fmt.Fprintf(&sb, "exports.create = impl => utils.createWrapper(%s, impl);\n", iface.Name)
	fmt.Fprintf(&sb, "exports.install = globalObject => { globalObject.%s = %s; };\n",
		iface.Name, iface.Name)
	fmt.Fprintf(&sb, "utils.registerBinding(%q, %s, exports, Impl);\n", iface.Name, iface.Name)
	return sb.String(), nil
}

func renderInterfaceMember(sb *strings.Builder, ms memberSource, reg *registry.Registry) {
	m := ms.member
	switch m.Kind {
	case idl.MemberConst:
		fmt.Fprintf(sb, "\n  static get %s() {\n    return %s;\n  }\n", m.Name, m.Default)

	case idl.MemberOperation:
		params := make([]string, len(m.Args))
		coerced := make([]string, len(m.Args))
		for i, arg := range m.Args {
			params[i] = arg.Name
			if arg.Variadic {
				params[i] = "..." + arg.Name
				coerced[i] = fmt.Sprintf("...%s.map(v => %s)", arg.Name, converterExpr(arg.Type, "v", reg))
				continue
			}
			coerced[i] = converterExpr(arg.Type, arg.Name, reg)
		}
		fmt.Fprintf(sb, "\n  %s(%s) {\n", m.Name, strings.Join(params, ", "))
		fmt.Fprintf(sb, "    return utils.wrap(this[utils.implSymbol].%s(%s));\n",
			m.Name, strings.Join(coerced, ", "))
		fmt.Fprintf(sb, "  }\n")

	default:
		// Attributes and bare field members share accessor shape.
		fmt.Fprintf(sb, "\n  get %s() {\n    return utils.wrap(this[utils.implSymbol].%s);\n  }\n",
			m.Name, m.Name)
		if !m.Readonly {
			fmt.Fprintf(sb, "\n  set %s(value) {\n    this[utils.implSymbol].%s = %s;\n  }\n",
				m.Name, m.Name, converterExpr(m.Type, "value", reg))
		}
	}
}

func renderDictionary(dict *registry.Dictionary, reg *registry.Registry) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Binding for dictionary %s\n\n", dict.Name)

	sb.WriteString("exports.convert = function convert(value) {\n")
	if dict.Inherits != "" {
		fmt.Fprintf(&sb, "  const result = utils.convertDictionary(%q, value);\n", dict.Inherits)
	} else {
		sb.WriteString("  const result = Object.create(null);\n")
	}
	sb.WriteString("  if (value === undefined || value === null) {\n    value = {};\n  }\n")

	for _, m := range dict.Members {
		fmt.Fprintf(&sb, "\n  if (value.%s !== undefined) {\n", m.Name)
		fmt.Fprintf(&sb, "    result.%s = %s;\n", m.Name, converterExpr(m.Type, "value."+m.Name, reg))
		switch {
		case m.Required:
			fmt.Fprintf(&sb, "  } else {\n    throw new TypeError(\"%s is required in %s\");\n  }\n",
				m.Name, dict.Name)
		case m.Default != "":
			fmt.Fprintf(&sb, "  } else {\n    result.%s = %s;\n  }\n", m.Name, m.Default)
		default:
			sb.WriteString("  }\n")
		}
	}

	sb.WriteString("  return result;\n};\n\n")
	fmt.Fprintf(&sb, "exports.dictionaryName = %q;\n", dict.Name)
	fmt.Fprintf(&sb, "utils.registerDictionary(%q, exports);\n", dict.Name)
	return sb.String(), nil
}
