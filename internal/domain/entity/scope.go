package entity

// Scope es el alcance de bodega de un conteo: una bodega concreta o "global".
type Scope string

// ScopeGlobal agrega todas las bodegas del producto.
const ScopeGlobal Scope = "global"

// WarehouseScope construye el alcance de una bodega. Un id vacío equivale a global.
func WarehouseScope(warehouseID string) Scope {
	if warehouseID == "" {
		return ScopeGlobal
	}
	return Scope(warehouseID)
}

// IsGlobal indica si el alcance agrega todas las bodegas.
func (s Scope) IsGlobal() bool {
	return s == "" || s == ScopeGlobal
}

// WarehouseID devuelve la bodega del alcance, o "" si es global.
func (s Scope) WarehouseID() string {
	if s.IsGlobal() {
		return ""
	}
	return string(s)
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return string(ScopeGlobal)
	}
	return string(s)
}
