package profile

import (
	"strconv"
	"strings"
)

const (
	socialFieldPrefix = "social_"
	// maxSocialFieldIndex bounds the indexes accepted from a form so a crafted
	// key like social_999999 cannot force a huge allocation.
	maxSocialFieldIndex = 50
)

// CollectSocials builds the raw social link list from indexed form fields
// (social_0, social_1, ...). Missing indexes become empty entries so the
// position of every value matches its field name.
func CollectSocials(values map[string]string) []string {
	last := -1
	byIndex := make(map[int]string)
	for key, value := range values {
		if !strings.HasPrefix(key, socialFieldPrefix) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(key, socialFieldPrefix))
		if err != nil || idx < 0 || idx >= maxSocialFieldIndex {
			continue
		}
		byIndex[idx] = value
		if idx > last {
			last = idx
		}
	}

	socials := make([]string, last+1)
	for idx, value := range byIndex {
		socials[idx] = value
	}
	return socials
}
