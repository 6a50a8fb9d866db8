package secretkey

import "github.com/rhuss/secretkey/pkg/auth"

// Wildcard keys claims granted to every identifier in StaticClaims.
const Wildcard = "*"

// StaticClaims returns a ClaimsFunc serving claims from a fixed table.
// Claims under Wildcard come first, then those listed for the identifier.
// Returns nil when the table is empty.
func StaticClaims(table map[string][]auth.Claim) ClaimsFunc {
	if len(table) == 0 {
		return nil
	}
	return func(identifier string) []auth.Claim {
		common := table[Wildcard]
		own := table[identifier]
		if identifier == Wildcard {
			own = nil
		}
		out := make([]auth.Claim, 0, len(common)+len(own))
		out = append(out, common...)
		return append(out, own...)
	}
}
