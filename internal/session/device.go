package session

import "github.com/mileusna/useragent"

// Device summarizes a User-Agent header as "name/mode", where mode is one of
// bot, phone, tablet, desktop or unknown.
func Device(agent string) string {
	if agent == "" {
		return "unknown/unknown"
	}
	return device(useragent.Parse(agent))
}

func device(ua useragent.UserAgent) string {
	var mode string
	switch {
	case ua.Bot:
		mode = "bot"
	case ua.Mobile:
		mode = "phone"
	case ua.Tablet:
		mode = "tablet"
	case ua.Desktop:
		mode = "desktop"
	default:
		mode = "unknown"
	}

	name := ua.Name
	if name == "" {
		name = "unknown"
	}
	return name + "/" + mode
}
