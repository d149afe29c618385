package guard

import "github.com/aussiebroadwan/gatekeeper/internal/iam/domain"

// Authorize checks the principal's role against a route's allow-list. A
// route that declares no roles is open to any authenticated principal.
func Authorize(p domain.Principal, allowed []domain.Role) error {
	if len(allowed) == 0 {
		return nil
	}

	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
