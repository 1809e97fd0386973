package auth

import "net/http"

// RedirectController serves the optional /login and /register routes that
// forward to externally configured URLs (typically the provider's own
// pages). Routes are only mounted when the URLs are configured.
type RedirectController struct {
	LoginURL    string
	RegisterURL string
}

// Login handles GET /login.
func (c *RedirectController) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, c.LoginURL, http.StatusFound)
}

// Register handles GET /register.
func (c *RedirectController) Register(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, c.RegisterURL, http.StatusFound)
}
