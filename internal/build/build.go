package build

import "strings"

var (
	Version = "dev"
	AppName = "Tman"
	Slug    = ""
)

func init() {
	if Slug == "" {
		Slug = strings.ToLower(AppName)
	}
}
