package types

import (
	"fmt"
	"strings"

	"github.com/FuelLabs/sway-sub019/internal/source"
)

// Format renders a type for diagnostics. strs may be nil, in which case
// nominal and parameter names degrade to numeric handles.
func (in *Interner) Format(strs *source.Interner, id TypeID) string {
	id = in.Resolve(id)
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindError:
		return "{error}"
	case KindUnit:
		return "()"
	case KindNever:
		return "!"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindNumeric:
		return tt.Width.String()
	case KindVar:
		if in.vars[tt.Payload].Numeric {
			return "{integer}"
		}
		return fmt.Sprintf("_%d", tt.Payload)
	case KindParam:
		info := in.params[tt.Payload]
		if name := lookupName(strs, info.Name); name != "" {
			return name
		}
		return fmt.Sprintf("T%d", info.Index)
	case KindSelf:
		return "Self"
	case KindRef:
		return "&" + in.Format(strs, tt.Elem)
	case KindArray:
		if tt.Count == ArrayLengthUnresolved {
			return fmt.Sprintf("[%s; _]", in.Format(strs, tt.Elem))
		}
		return fmt.Sprintf("[%s; %d]", in.Format(strs, tt.Elem), tt.Count)
	case KindTuple:
		elems := in.tuples[tt.Payload].Elems
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = in.Format(strs, e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindNominal:
		info := in.nominals[tt.Payload]
		name := lookupName(strs, info.Name)
		if name == "" {
			name = fmt.Sprintf("nominal#%d", info.Owner)
		}
		if len(info.Args) == 0 {
			return name
		}
		parts := make([]string, len(info.Args))
		for i, a := range info.Args {
			parts[i] = in.Format(strs, a)
		}
		return name + "<" + strings.Join(parts, ", ") + ">"
	default:
		return tt.Kind.String()
	}
}

// Mangle renders a stable, display-independent key for a type; the
// monomorphization manifest uses it to name instantiations.
func (in *Interner) Mangle(id TypeID) string {
	id = in.Resolve(id)
	tt, ok := in.Lookup(id)
	if !ok {
		return "invalid"
	}
	switch tt.Kind {
	case KindError:
		return "err"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindNumeric:
		if tt.Width == WidthAny {
			return "uN"
		}
		return fmt.Sprintf("u%d", uint8(tt.Width))
	case KindVar:
		return fmt.Sprintf("v%d", tt.Payload)
	case KindParam:
		info := in.params[tt.Payload]
		return fmt.Sprintf("p%d_%d", info.Owner, info.Index)
	case KindSelf:
		return "self"
	case KindRef:
		return "r_" + in.Mangle(tt.Elem)
	case KindArray:
		return fmt.Sprintf("a%d_%s", tt.Count, in.Mangle(tt.Elem))
	case KindTuple:
		elems := in.tuples[tt.Payload].Elems
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = in.Mangle(e)
		}
		return "t_" + strings.Join(parts, "_")
	case KindNominal:
		info := in.nominals[tt.Payload]
		out := fmt.Sprintf("n%d", info.Owner)
		for _, a := range info.Args {
			out += "_" + in.Mangle(a)
		}
		return out
	default:
		return tt.Kind.String()
	}
}

func lookupName(strs *source.Interner, id source.StringID) string {
	if strs == nil || id == source.NoStringID {
		return ""
	}
	if s, ok := strs.Lookup(id); ok {
		return s
	}
	return ""
}
