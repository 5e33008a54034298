package riot

import "fmt"

const (
	// DefaultDDragonVersion is the Data Dragon asset version icons are served from.
	DefaultDDragonVersion = "14.23.1"
	// DefaultProfileIconID is the icon every new account starts with.
	DefaultProfileIconID = 29

	ddragonBaseURL = "https://ddragon.leagueoflegends.com/cdn"
)

// IconURL returns the Data Dragon URL of a profile icon.
func IconURL(version string, iconID int) string {
	if version == "" {
		version = DefaultDDragonVersion
	}
	return fmt.Sprintf("%s/%s/img/profileicon/%d.png", ddragonBaseURL, version, iconID)
}
