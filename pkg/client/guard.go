package client

// Status is the client session state.
type Status string

const (
	StatusChecking        Status = "checking"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Well-known view paths.
const (
	RootPath      = "/"
	LoginPath     = "/auth/login"
	RegisterPath  = "/auth/register"
	DashboardPath = "/dashboard"
)

// Redirect is a navigation intent. The guard only ever emits intents; a
// Navigator decides how to execute them.
type Redirect struct {
	To string
}

// Navigator executes navigation intents.
type Navigator interface {
	Navigate(redirect Redirect)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(Redirect)

func (f NavigatorFunc) Navigate(redirect Redirect) {
	f(redirect)
}

// Decide is the route guard: a pure function of session status and the
// current path. While the session is still being checked no decision is
// made, so callers should render a neutral loading view.
func Decide(status Status, path string) *Redirect {
	switch status {
	case StatusAuthenticated:
		if isAuthPage(path) {
			return &Redirect{To: DashboardPath}
		}
		return nil
	case StatusUnauthenticated:
		if isAuthPage(path) || path == RootPath {
			return nil
		}
		return &Redirect{To: LoginPath}
	default:
		return nil
	}
}

func isAuthPage(path string) bool {
	return path == LoginPath || path == RegisterPath
}
