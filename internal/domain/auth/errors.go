package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or missing access token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrEmployeeScopeRequired  = errors.New("access token is not bound to an employee")
)
