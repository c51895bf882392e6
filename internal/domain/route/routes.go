// Package route declares the navigable route space and its split into
// the public and private sets. Membership is exact-match on the full
// path: query strings and trailing segments are not normalized away.
package route

// Well-known routes the authorization gate redirects to.
const (
	Login = "/login"
	Home  = "/"
)

// publicRoutes are reachable without a session. The vacancies path
// keeps the server's registered spelling.
var publicRoutes = map[string]struct{}{
	"/":                            {},
	Login:                          {},
	"/vancies-training":            {},
	"/forgot-password":             {},
	"/reset-password":              {},
	"/login-ndi-qrcode":            {},
	"/register/assessor":           {},
	"/register/assessment-centre":  {},
	"/register/accreditor":         {},
	"/register/institute-proposal": {},
	"/register/institute":          {},
	"/register/qms-auditor":        {},
	"/register/trainer":            {},
}

// privateRoutes require an authenticated session. Access within the
// set is not checked per-route client-side: the privilege menu decides
// what gets rendered, and the server enforces per-operation access.
var privateRoutes = map[string]struct{}{
	"/":                       {},
	"/create-role":            {},
	"/create-user":            {},
	"/create-dropdown":        {},
	"/user-profile":           {},
	"/change-password":        {},
	"/switch-role":            {},
	"/report-index":           {},
	"/my-task-index":          {},
	"/group-task-index":       {},
	"/user-dashboard":         {},
	"/complaint-service":      {},
	"/view-complaint-details": {},
}

// IsPublic reports whether path is in the public set.
func IsPublic(path string) bool {
	_, ok := publicRoutes[path]
	return ok
}

// IsPrivate reports whether path is in the private set.
func IsPrivate(path string) bool {
	_, ok := privateRoutes[path]
	return ok
}

// Known reports whether path belongs to either set.
func Known(path string) bool {
	return IsPublic(path) || IsPrivate(path)
}
