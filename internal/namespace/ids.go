package namespace

// ScopeID identifies a scope in the namespace arena.
type ScopeID uint32

// NoScopeID marks the absence of a scope reference.
const NoScopeID ScopeID = 0

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID identifies a declaration inside the namespace arena. Call and
// reference sites hold SymbolIDs; declarations are never duplicated.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol reference.
const NoSymbolID SymbolID = 0

// IsValid reports whether the symbol ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// ImplID identifies one interface implementation in the impl table.
type ImplID uint32

// NoImplID marks the absence of an impl reference.
const NoImplID ImplID = 0

// IsValid reports whether the impl ID refers to a registered impl.
func (id ImplID) IsValid() bool { return id != NoImplID }
