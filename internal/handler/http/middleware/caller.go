package middleware

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// Caller is the identity carried by a verified access token.
type Caller struct {
	Subject    string
	IsAdmin    bool
	EmployeeID string
}

func CallerFromContext(ctx context.Context) (Caller, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Caller{}, auth.ErrInvalidToken
	}

	subject, _ := claims[jwt.ClaimSubject].(string)
	isAdmin, _ := claims[jwt.ClaimIsAdmin].(bool)
	employeeID, _ := claims[jwt.ClaimEmployeeID].(string)

	return Caller{Subject: subject, IsAdmin: isAdmin, EmployeeID: employeeID}, nil
}

// ScopeEmployee returns the employee id a request may act on. Admins may name
// any employee; everyone else is bound to the employee in their token.
func (c Caller) ScopeEmployee(requested string) (string, error) {
	if c.IsAdmin && requested != "" {
		return requested, nil
	}
	if c.EmployeeID == "" {
		return "", auth.ErrEmployeeScopeRequired
	}
	return c.EmployeeID, nil
}

// CanAccess reports whether the caller may see a resource owned by employeeID.
func (c Caller) CanAccess(employeeID string) bool {
	return c.IsAdmin || (c.EmployeeID != "" && c.EmployeeID == employeeID)
}
