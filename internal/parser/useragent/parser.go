package useragent

import (
	"regexp"
	"strings"
)

// Device classes reported in Info.Device.
const (
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

const unknown = "Unknown"

// Info is the classification of a raw User-Agent header, shown next to a
// host in the dashboard drill-down.
type Info struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OS             string `json:"os"`
	OSVersion      string `json:"os_version,omitempty"`
	Device         string `json:"device"`
}

type rule struct {
	name    string
	pattern *regexp.Regexp
}

var (
	// Most specific first: Edge and Opera also announce Chrome, Chrome announces Safari.
	browserRules = []rule{
		{"Edge", regexp.MustCompile(`(?i)Edg(?:e|A|iOS)?/(\d+(?:\.\d+)?)`)},
		{"Opera", regexp.MustCompile(`(?i)(?:Opera|OPR)/(\d+(?:\.\d+)?)`)},
		{"Samsung Internet", regexp.MustCompile(`(?i)SamsungBrowser/(\d+(?:\.\d+)?)`)},
		{"Chrome", regexp.MustCompile(`(?i)(?:Chrome|CriOS)/(\d+(?:\.\d+)?)`)},
		{"Firefox", regexp.MustCompile(`(?i)(?:Firefox|FxiOS)/(\d+(?:\.\d+)?)`)},
		{"Safari", regexp.MustCompile(`(?i)Version/(\d+(?:\.\d+)?).*Safari`)},
		{"IE", regexp.MustCompile(`(?i)MSIE\s+(\d+\.\d+)`)},
		{"IE", regexp.MustCompile(`(?i)Trident/.*rv:(\d+\.\d+)`)},
	}

	// iOS before macOS: iPhones claim "like Mac OS X". Android before Linux.
	osRules = []rule{
		{"Windows", regexp.MustCompile(`(?i)Windows NT (\d+\.\d+)`)},
		{"iOS", regexp.MustCompile(`(?i)(?:iPhone|iPad|iPod).*? OS (\d+[._]\d+)`)},
		{"macOS", regexp.MustCompile(`(?i)Mac OS X (\d+[._]\d+)`)},
		{"Android", regexp.MustCompile(`(?i)Android (\d+(?:\.\d+)?)`)},
		{"ChromeOS", regexp.MustCompile(`(?i)CrOS`)},
		{"Linux", regexp.MustCompile(`(?i)Linux`)},
	}

	botPattern    = regexp.MustCompile(`(?i)bot|crawl|spider|slurp|scraper|curl|wget|python|go-http|httpclient|postman|headless`)
	mobilePattern = regexp.MustCompile(`(?i)mobile|android|iphone|ipad|ipod|blackberry|windows phone`)
)

// knownBots maps a lowercase marker to a display name. Checked in order, so
// longer markers that contain shorter ones go first.
var knownBots = []struct{ marker, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"slurp", "Yahoo Slurp"},
	{"duckduckbot", "DuckDuckBot"},
	{"baiduspider", "Baidu Spider"},
	{"yandexbot", "YandexBot"},
	{"ahrefsbot", "AhrefsBot"},
	{"semrushbot", "SemrushBot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedInBot"},
	{"applebot", "Applebot"},
	{"python", "Python Client"},
	{"go-http", "Go HTTP Client"},
	{"curl", "cURL"},
	{"wget", "Wget"},
	{"postman", "Postman"},
}

var windowsReleases = map[string]string{
	"10.0": "10/11",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
	"6.0":  "Vista",
	"5.1":  "XP",
}

// Parse classifies a User-Agent header. Bots are recognised before any
// browser matching. An empty header yields an all-unknown Info.
func Parse(userAgent string) Info {
	if strings.TrimSpace(userAgent) == "" || userAgent == "-" {
		return Info{Browser: unknown, OS: unknown, Device: DeviceUnknown}
	}

	if botPattern.MatchString(userAgent) {
		return Info{Browser: botName(userAgent), OS: "Bot", Device: DeviceBot}
	}

	info := Info{Browser: unknown, OS: unknown, Device: DeviceDesktop}

	if name, version, ok := match(browserRules, userAgent); ok {
		info.Browser, info.BrowserVersion = name, version
	}

	if name, version, ok := match(osRules, userAgent); ok {
		info.OS = name
		info.OSVersion = strings.ReplaceAll(version, "_", ".")
		if name == "Windows" {
			if release, known := windowsReleases[info.OSVersion]; known {
				info.OSVersion = release
			}
		}
	}

	if mobilePattern.MatchString(userAgent) {
		info.Device = DeviceMobile
	}

	return info
}

// String renders the classification as "Browser 118.0 on Windows 10/11".
func (i Info) String() string {
	if i.Device == DeviceBot {
		return i.Browser + " (bot)"
	}

	browser := joinVersion(i.Browser, i.BrowserVersion)
	os := joinVersion(i.OS, i.OSVersion)
	if os == unknown {
		return browser
	}
	return browser + " on " + os
}

func match(rules []rule, userAgent string) (name, version string, ok bool) {
	for _, r := range rules {
		if m := r.pattern.FindStringSubmatch(userAgent); m != nil {
			if len(m) > 1 {
				version = m[1]
			}
			return r.name, version, true
		}
	}
	return "", "", false
}

func botName(userAgent string) string {
	lower := strings.ToLower(userAgent)
	for _, bot := range knownBots {
		if strings.Contains(lower, bot.marker) {
			return bot.name
		}
	}
	return "Bot"
}

func joinVersion(name, version string) string {
	if version == "" {
		return name
	}
	return name + " " + version
}
