package browser

import "math/rand/v2"

// Viewport is a browser window size.
type Viewport struct {
	Width  int64
	Height int64
}

// Common desktop viewports; a fixed unusual size is an automation tell.
var viewports = []Viewport{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
}

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// stealthScript runs on every new document before page scripts, masking the
// markers headless automation leaves on navigator and window.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
window.chrome = { runtime: {} };
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);
`

// Geolocation base matching the America/New_York timezone the session
// advertises, jittered per request so repeated visits don't report one
// exact coordinate.
const (
	geoBaseLatitude  = 40.730610
	geoBaseLongitude = -73.935242
	geoJitterDegrees = 0.02
)

func randomGeolocation() (lat, lng float64) {
	lat = geoBaseLatitude + (rand.Float64()*2-1)*geoJitterDegrees
	lng = geoBaseLongitude + (rand.Float64()*2-1)*geoJitterDegrees
	return lat, lng
}

func randomViewport() Viewport {
	return viewports[rand.N(len(viewports))]
}

func randomUserAgent() string {
	return userAgents[rand.N(len(userAgents))]
}
