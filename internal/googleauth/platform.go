package googleauth

// Platform identifies one of the external reporting integrations. The string
// value is the slug used in cache keys and API routes.
type Platform string

const (
	PlatformAnalytics     Platform = "google-analytics"
	PlatformSearchConsole Platform = "google-search-console"
	PlatformAds           Platform = "google-ads"
)

func (p Platform) String() string {
	return string(p)
}

// OAuth scope URIs required per platform. Presence of the exact URI in a
// credential's granted scope set is what authorizes calls to that platform.
const (
	ScopeAnalytics     = "https://www.googleapis.com/auth/analytics.readonly"
	ScopeSearchConsole = "https://www.googleapis.com/auth/webmasters.readonly"
	ScopeAds           = "https://www.googleapis.com/auth/adwords"
)

var scopeRegistry = map[Platform]string{
	PlatformAnalytics:     ScopeAnalytics,
	PlatformSearchConsole: ScopeSearchConsole,
	PlatformAds:           ScopeAds,
}

// RequiredScope returns the scope URI a credential must carry to use the
// platform's API.
func RequiredScope(p Platform) (string, bool) {
	scope, ok := scopeRegistry[p]
	return scope, ok
}

// Platforms returns all registered platforms in stable order.
func Platforms() []Platform {
	return []Platform{PlatformAnalytics, PlatformSearchConsole, PlatformAds}
}
