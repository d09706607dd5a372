// Package password contiene las reglas locales de password que se chequean
// antes de llamar al identity provider. El provider sigue siendo la fuente de
// verdad: esta policy solo corta antes errores obvios.
package password

import "unicode"

// Policy reglas mínimas de password. El valor cero no exige nada.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
	// Blacklist opcional de passwords prohibidos (case-insensitive).
	Blacklist *Blacklist
}

// Enabled indica si la policy exige algo.
func (p Policy) Enabled() bool {
	return p.MinLength > 0 || p.RequireUpper || p.RequireLower ||
		p.RequireDigit || p.RequireSymbol || p.Blacklist.Len() > 0
}

// Validate retorna ok=false y los motivos (too_short, missing_upper, ...) si
// el password no cumple.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	if p.Blacklist.Contains(s) {
		reasons = append(reasons, "blacklisted")
	}
	return len(reasons) == 0, reasons
}
